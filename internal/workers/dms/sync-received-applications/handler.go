// internal/workers/dms/sync-received-applications/handler.go
package syncreceivedapplications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

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
	TaskType = "dms-sync-received-applications"
	syncName = "received"
)

// Watermarks reads the last update date committed per procedure. The
// watermark itself is advanced by dms-advance-received-watermark once the
// listed applications are imported.
type Watermarks interface {
	Get(ctx context.Context, procedureID int) (time.Time, error)
}

type Handler struct {
	config     *Config
	pages      dms.PageFetcher
	watermarks Watermarks
	obs        *observability.Observability
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, pages dms.PageFetcher, watermarks Watermarks, errHandler *errors.ErrorHandler, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		pages:      pages,
		watermarks: watermarks,
		obs:        obs,
		errors:     errHandler,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	since, err := h.since(ctx, input)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{
		"runId":       runID,
		"procedureId": input.ProcedureID,
	})
	procedureLabel := strconv.Itoa(input.ProcedureID)

	crawler := dms.NewCrawler(h.pages, nil,
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

	apps, err := crawler.ReceivedApplications(ctx, input.ProcedureID, h.config.Token, since)
	if err != nil {
		return nil, err
	}

	output := &Output{
		RunID:          runID,
		ProcedureID:    input.ProcedureID,
		ApplicationIDs: make([]int, 0, len(apps)),
	}
	if !since.IsZero() {
		output.Watermark = &since
	}

	var newest time.Time
	for _, app := range apps {
		output.ApplicationIDs = append(output.ApplicationIDs, app.ID)
		if app.UpdatedAt.After(newest) {
			newest = app.UpdatedAt
		}
	}
	output.Count = len(output.ApplicationIDs)
	if !newest.IsZero() {
		output.NewestUpdate = &newest
	}

	metrics.ApplicationsAdmitted.WithLabelValues(procedureLabel, syncName).Add(float64(output.Count))
	h.obs.RecordSyncAdmitted(ctx, input.ProcedureID, syncName, output.Count)
	log.Info("Received applications to import", map[string]interface{}{
		"count":        output.Count,
		"since":        since,
		"newestUpdate": output.NewestUpdate,
	})

	return output, nil
}

// since prefers the explicit input over the stored watermark.
func (h *Handler) since(ctx context.Context, input *Input) (time.Time, error) {
	if input.LastUpdate != nil {
		return *input.LastUpdate, nil
	}
	stored, err := h.watermarks.Get(ctx, input.ProcedureID)
	if err != nil {
		return time.Time{}, errors.NewCacheUnavailableError(err)
	}
	return stored, nil
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
