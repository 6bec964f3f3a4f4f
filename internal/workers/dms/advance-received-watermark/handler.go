// internal/workers/dms/advance-received-watermark/handler.go
package advancereceivedwatermark

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "dms-advance-received-watermark"
)

type Watermarks interface {
	Get(ctx context.Context, procedureID int) (time.Time, error)
	Advance(ctx context.Context, procedureID int, t time.Time) (bool, error)
}

// Handler commits the newest update date of a received sync run. The process
// runs it after every listed application was imported, so the watermark only
// covers work that is done.
type Handler struct {
	config     *Config
	watermarks Watermarks
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, watermarks Watermarks, errHandler *errors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		watermarks: watermarks,
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
	if input.ProcedureID <= 0 {
		return nil, errors.NewInvalidInputError("procedureId is required")
	}

	output := &Output{ProcedureID: input.ProcedureID}
	if input.NewestUpdate != nil {
		advanced, err := h.watermarks.Advance(ctx, input.ProcedureID, *input.NewestUpdate)
		if err != nil {
			return nil, errors.NewCacheUnavailableError(err)
		}
		output.Advanced = advanced
	}

	current, err := h.watermarks.Get(ctx, input.ProcedureID)
	if err != nil {
		return nil, errors.NewCacheUnavailableError(err)
	}
	if !current.IsZero() {
		output.Watermark = &current
	}

	h.logger.Info("Received watermark committed", map[string]interface{}{
		"procedureId": input.ProcedureID,
		"advanced":    output.Advanced,
		"watermark":   output.Watermark,
	})
	return output, nil
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
