// internal/workers/dms/import-bank-information/handler.go
package importbankinformation

import (
	"context"
	"encoding/json"
	"fmt"

	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/common/metrics"
	"dms-workers/internal/dms"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "dms-import-bank-information"
)

type DetailFetcher interface {
	OffererApplicationDetail(ctx context.Context, applicationID int) (*dms.ApplicationDetail, error)
	VenueApplicationDetail(ctx context.Context, applicationID int, version int) (*dms.ApplicationDetail, error)
}

type BankInformationStore interface {
	Save(ctx context.Context, detail *dms.ApplicationDetail) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) (string, error)
	TopicARN() string
}

type Handler struct {
	config    *Config
	details   DetailFetcher
	store     BankInformationStore
	publisher EventPublisher
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

// NewHandler accepts a nil publisher when events are disabled.
func NewHandler(config *Config, details DetailFetcher, store BankInformationStore, publisher EventPublisher, errHandler *errors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		details:   details,
		store:     store,
		publisher: publisher,
		errors:    errHandler,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleJob(context.Background(), client, job)
}

func (h *Handler) HandleJob(ctx context.Context, client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID <= 0 {
		return nil, errors.NewInvalidInputError("applicationId is required")
	}

	detail, err := h.fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	metrics.BankInformationStatuses.WithLabelValues(string(detail.Status)).Inc()

	saved, err := h.store.Save(ctx, detail)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	output := &Output{
		ApplicationID: detail.ApplicationID,
		Status:        string(detail.Status),
		Siren:         detail.Siren,
		Siret:         detail.Siret,
		VenueName:     detail.VenueName,
		Saved:         saved,
	}

	if !saved {
		h.logger.Info("Stored bank information is up to date", map[string]interface{}{
			"applicationId": detail.ApplicationID,
		})
		return output, nil
	}

	if h.config.EventsEnabled && h.publisher != nil {
		eventID, err := h.publisher.Publish(ctx, EventBankInformationUpdated, BankInformationUpdated{
			ApplicationID:    detail.ApplicationID,
			Kind:             input.Kind,
			Status:           string(detail.Status),
			Siren:            detail.Siren,
			Siret:            detail.Siret,
			VenueName:        detail.VenueName,
			ModificationDate: detail.ModificationDate,
		})
		if err != nil {
			return nil, errors.NewEventPublishFailedError(h.publisher.TopicARN(), err)
		}
		output.EventID = eventID
	}

	h.logger.Info("Imported bank information", map[string]interface{}{
		"applicationId": detail.ApplicationID,
		"kind":          input.Kind,
		"status":        detail.Status,
	})
	return output, nil
}

func (h *Handler) fetch(ctx context.Context, input *Input) (*dms.ApplicationDetail, error) {
	switch input.Kind {
	case KindOfferer:
		return h.details.OffererApplicationDetail(ctx, input.ApplicationID)
	case KindVenue:
		version := input.Version
		if version == 0 {
			version = dms.VenueSchemaLegacy
		}
		return h.details.VenueApplicationDetail(ctx, input.ApplicationID, version)
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown kind %q", input.Kind))
	}
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
