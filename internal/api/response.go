// internal/api/response.go
package api

import (
	"net/http"

	apperrors "site-composer/internal/common/errors"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// RespondError writes the error envelope with the status mapped from the error code.
func RespondError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandardError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(stdErr.Code), ErrorEnvelope{
		Success: false,
		Error: APIError{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
