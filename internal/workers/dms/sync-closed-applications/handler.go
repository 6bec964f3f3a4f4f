// internal/workers/dms/sync-closed-applications/handler.go
package syncclosedapplications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/common/metrics"
	"dms-workers/internal/common/observability"
	"dms-workers/internal/dms"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "dms-sync-closed-applications"
	syncName = "closed"
)

type Handler struct {
	config    *Config
	pages     dms.PageFetcher
	processed dms.ProcessedIDLookup
	obs       *observability.Observability
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, pages dms.PageFetcher, processed dms.ProcessedIDLookup, errHandler *errors.ErrorHandler, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		pages:     pages,
		processed: processed,
		obs:       obs,
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
	runID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{
		"runId":       runID,
		"procedureId": input.ProcedureID,
	})
	procedureLabel := strconv.Itoa(input.ProcedureID)

	crawler := dms.NewCrawler(h.pages, h.processed,
		dms.WithPageSize(h.config.PageSize),
		dms.WithProgress(func(p dms.PageProgress) {
			metrics.PagesFetched.WithLabelValues(procedureLabel).Inc()
			log.Info("Fetched listing page", map[string]interface{}{
				"page":       p.Page,
				"totalPages": p.TotalPages,
				"admitted":   p.Admitted,
			})
		}),
	)

	ids, err := crawler.ClosedApplicationIDs(ctx, input.ProcedureID, h.config.Token)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsAdmitted.WithLabelValues(procedureLabel, syncName).Add(float64(len(ids)))
	h.obs.RecordSyncAdmitted(ctx, input.ProcedureID, syncName, len(ids))
	log.Info("Closed applications to import", map[string]interface{}{"count": len(ids)})

	return &Output{
		RunID:          runID,
		ProcedureID:    input.ProcedureID,
		ApplicationIDs: ids,
		Count:          len(ids),
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
