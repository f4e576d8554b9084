// internal/workers/variants/recommend-section-variants/handler.go
package recommendsectionvariants

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/common/validation"
	"site-composer/internal/models"
	"site-composer/internal/service"
	"site-composer/internal/variants"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-section-variants"
)

type Recommender interface {
	RecommendSection(ctx context.Context, siteID, sectionType string, profile *models.BusinessProfile) (*service.SectionRecommendation, error)
	RecommendSite(ctx context.Context, req service.SiteRecommendRequest) (*service.SiteRecommendation, error)
}

type Handler struct {
	config       *Config
	recommender  Recommender
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, recommender Recommender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		recommender:  recommender,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

// inputSchema tolerates the other process variables a job carries.
var inputSchema = func() validation.JSONSchema {
	s := service.RecommendRequestSchema
	s.Required = []string{"siteId"}
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

// ParseInput validates and decodes job variables.
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

// Execute recommends one section when only sectionType is given, otherwise
// the listed sections or the default set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SectionType != "" && len(input.Sections) == 0 && !input.Apply {
		rec, err := h.recommender.RecommendSection(ctx, input.SiteID, input.SectionType, input.BusinessProfile)
		if err != nil {
			return nil, err
		}
		out := toSelectionOutput(rec.Selection, -1)
		out.ComponentKey = rec.ComponentKey
		return &Output{Selections: []SelectionOutput{out}}, nil
	}

	sections := input.Sections
	if len(sections) == 0 && input.SectionType != "" {
		sections = []string{input.SectionType}
	}
	rec, err := h.recommender.RecommendSite(ctx, service.SiteRecommendRequest{
		SiteID:   input.SiteID,
		Sections: sections,
		Profile:  input.BusinessProfile,
		Apply:    input.Apply,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		Selections:       make([]SelectionOutput, 0, len(rec.Selections)),
		OverallReasoning: rec.OverallReasoning,
		Applied:          rec.Applied,
	}
	for _, sel := range rec.Selections {
		output.Selections = append(output.Selections, toSelectionOutput(sel, h.config.BatchAlternatives))
	}

	h.logger.Info("variants recommended", map[string]interface{}{
		"siteId":   input.SiteID,
		"sections": len(output.Selections),
		"applied":  output.Applied,
	})
	return output, nil
}

func toSelectionOutput(sel variants.Selection, maxAlternatives int) SelectionOutput {
	out := SelectionOutput{
		SectionType:     string(sel.SectionType),
		SelectedVariant: sel.SelectedVariant,
		Score:           variants.Percent(sel.Score),
		Reasoning:       sel.Reasoning,
		Alternatives:    []int{},
	}
	for _, alt := range sel.TopAlternatives(maxAlternatives) {
		out.Alternatives = append(out.Alternatives, alt.Variant)
	}
	return out
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
