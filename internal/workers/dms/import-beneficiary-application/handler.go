// internal/workers/dms/import-beneficiary-application/handler.go
package importbeneficiaryapplication

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/common/metrics"
	"dms-workers/internal/dms"
	"dms-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "dms-import-beneficiary-application"
)

type Applications interface {
	BeneficiaryApplication(ctx context.Context, procedureID, applicationNumber int) (*dms.NormalizedApplication, error)
}

type ImportStore interface {
	Save(ctx context.Context, app *dms.NormalizedApplication, activity *dms.Activity) error
	SaveError(ctx context.Context, procedureID, applicationID int, email string, fieldErrors map[string]string) error
}

type ErrorIndex interface {
	Index(ctx context.Context, doc repository.ParsingErrorDocument) (string, error)
	IndexName() string
}

type Handler struct {
	config       *Config
	applications Applications
	imports      ImportStore
	errorIndex   ErrorIndex
	errors       *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, applications Applications, imports ImportStore, errorIndex ErrorIndex, errHandler *errors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		applications: applications,
		imports:      imports,
		errorIndex:   errorIndex,
		errors:       errHandler,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:          time.Now,
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

	app, err := h.applications.BeneficiaryApplication(ctx, input.ProcedureID, input.ApplicationID)
	var parsingErr *dms.ParsingError
	if stderrors.As(err, &parsingErr) {
		return h.recordParsingError(ctx, input, parsingErr)
	}
	if err != nil {
		return nil, err
	}

	activity := h.activity(app)
	if err := h.imports.Save(ctx, app, activity); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	output := &Output{
		Status:        StatusImported,
		ProcedureID:   input.ProcedureID,
		ApplicationID: app.ApplicationID,
		Email:         app.Email,
	}
	if activity != nil {
		output.Activity = string(*activity)
	}

	h.logger.Info("Imported beneficiary application", map[string]interface{}{
		"procedureId":   input.ProcedureID,
		"applicationId": app.ApplicationID,
	})
	return output, nil
}

func (h *Handler) recordParsingError(ctx context.Context, input *Input, perr *dms.ParsingError) (*Output, error) {
	metrics.RecordParsingError(perr.Fields())

	if err := h.imports.SaveError(ctx, input.ProcedureID, input.ApplicationID, perr.Email, perr.Errors); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	docID, err := h.errorIndex.Index(ctx, repository.ParsingErrorDocument{
		ProcedureID:   input.ProcedureID,
		ApplicationID: input.ApplicationID,
		Email:         perr.Email,
		Errors:        perr.Errors,
		Fields:        perr.Fields(),
		Message:       perr.Message,
		OccurredAt:    h.now().UTC(),
	})
	if err != nil {
		return nil, errors.NewSearchIndexFailedError(h.errorIndex.IndexName(), err)
	}

	h.logger.Warn("Beneficiary application has invalid fields", map[string]interface{}{
		"procedureId":   input.ProcedureID,
		"applicationId": input.ApplicationID,
		"fields":        perr.Fields(),
	})

	return &Output{
		Status:          StatusParsingError,
		ProcedureID:     input.ProcedureID,
		ApplicationID:   input.ApplicationID,
		Email:           perr.Email,
		Errors:          perr.Errors,
		ErrorDocumentID: docID,
	}, nil
}

// activity maps the free-text status answer. Unknown answers are logged and
// stored as NULL.
func (h *Handler) activity(app *dms.NormalizedApplication) *dms.Activity {
	if app.Activity == nil {
		return nil
	}
	activity, ok := dms.ActivityFromLabel(*app.Activity)
	if !ok {
		h.logger.Warn("Unknown activity value for application", map[string]interface{}{
			"applicationId": app.ApplicationID,
			"activity":      *app.Activity,
		})
		return nil
	}
	return &activity
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
