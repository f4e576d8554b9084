// internal/api/sections.go
package api

import (
	"encoding/json"
	"net/http"

	"site-composer/internal/common/logger"
	"site-composer/internal/service"

	"github.com/gin-gonic/gin"
)

type SectionHandler struct {
	composer Composer
	logger   logger.Logger
}

func NewSectionHandler(composer Composer, log logger.Logger) *SectionHandler {
	return &SectionHandler{
		composer: composer,
		logger:   log.WithFields(map[string]interface{}{"handler": "SectionHandler"}),
	}
}

type addSectionBody struct {
	Type    string          `json:"type"`
	Variant int             `json:"variant"`
	Content json.RawMessage `json:"content"`
}

// Add handles POST /api/sites/:siteId/sections.
func (h *SectionHandler) Add(c *gin.Context) {
	var body addSectionBody
	if err := bindBody(c, service.AddSectionRequestSchema, &body); err != nil {
		RespondError(c, err)
		return
	}

	section, err := h.composer.AddSection(c.Request.Context(), c.Param("siteId"), service.AddSectionRequest{
		Type:    body.Type,
		Content: body.Content,
		Variant: body.Variant,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"success": true, "section": section})
}

// Delete handles DELETE /api/sites/:siteId/sections/:sectionId.
func (h *SectionHandler) Delete(c *gin.Context) {
	if err := h.composer.DeleteSection(c.Request.Context(), c.Param("siteId"), c.Param("sectionId")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderBody struct {
	SectionIDs []string `json:"sectionIds"`
}

// Reorder handles PUT /api/sites/:siteId/sections/order.
func (h *SectionHandler) Reorder(c *gin.Context) {
	var body reorderBody
	if err := bindBody(c, service.ReorderRequestSchema, &body); err != nil {
		RespondError(c, err)
		return
	}

	sections, err := h.composer.ReorderSections(c.Request.Context(), c.Param("siteId"), body.SectionIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "sections": sections})
}
