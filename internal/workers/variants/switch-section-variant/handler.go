// internal/workers/variants/switch-section-variant/handler.go
package switchsectionvariant

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/common/validation"
	"site-composer/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "switch-section-variant"
)

type Switcher interface {
	SwitchVariant(ctx context.Context, req service.SwitchRequest) (*service.SwitchResult, error)
}

type Handler struct {
	config       *Config
	switcher     Switcher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, switcher Switcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		switcher:     switcher,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

var inputSchema = func() validation.JSONSchema {
	s := service.SwitchRequestSchema
	s.Required = []string{"siteId", "newVariant"}
	s.AdditionalProperties = true
	return s
}()

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	h.completeJob(ctx, client, job, output)
	return nil
}

func ParseInput(variables string) (*Input, error) {
	if err := validation.Validate([]byte(variables), inputSchema); err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// Execute applies the switch; isOverride defaults to true like the HTTP API.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	isOverride := true
	if input.IsOverride != nil {
		isOverride = *input.IsOverride
	}

	res, err := h.switcher.SwitchVariant(ctx, service.SwitchRequest{
		SiteID:      input.SiteID,
		SectionID:   input.SectionID,
		SectionType: input.SectionType,
		NewVariant:  input.NewVariant,
		IsOverride:  isOverride,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		SectionID:       res.SectionID,
		SectionType:     res.SectionType,
		PreviousVariant: res.PreviousVariant,
		NewVariant:      res.NewVariant,
		IsOverride:      res.IsOverride,
		VariantInfo:     res.VariantInfo,
		UpdatedAt:       res.UpdatedAt,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
