// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"dms-workers/internal/common/config"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/common/metrics"
	"dms-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one job and reports its outcome through client.
type JobHandler interface {
	HandleJob(ctx context.Context, client worker.JobClient, job entities.Job)
}

// Instrumentation is optional; nil members are skipped.
type Instrumentation struct {
	Observability *observability.Observability
	Tracing       *observability.Tracing
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler JobHandler,
	inst Instrumentation,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, inst)).
		Name(taskType)
	if cfg.MaxJobsActive > 0 {
		builder = builder.MaxJobsActive(cfg.MaxJobsActive)
	}
	if cfg.Timeout > 0 {
		builder = builder.Timeout(time.Duration(cfg.Timeout) * time.Millisecond)
	}
	jobWorker := builder.Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": cfg.MaxJobsActive,
		"timeoutMs":     cfg.Timeout,
	})

	return &CamundaWorker{worker: jobWorker, logger: log, taskType: taskType}
}

func (w *CamundaWorker) TaskType() string { return w.taskType }

// Stop closes the job stream and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// Instrument wraps handler with job metrics and a span per job.
func Instrument(taskType string, handler JobHandler, inst Instrumentation) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		ctx, span := inst.Tracing.StartJob(context.Background(), taskType, job.GetKey())
		tracked := &outcomeClient{JobClient: client}

		handler.HandleJob(ctx, tracked, job)

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := observability.StatusCompleted
		switch tracked.outcome {
		case outcomeCompleted:
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			observability.EndJob(span, nil)
		default:
			status = observability.StatusFailed
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(tracked.outcome)).Inc()
			observability.EndJob(span, outcomeError(tracked.outcome))
		}
		inst.Observability.RecordJob(ctx, taskType, status, elapsed)
	}
}

type outcome string

const (
	outcomeNone      outcome = ""
	outcomeCompleted outcome = "COMPLETED"
	outcomeFailed    outcome = "FAILED"
	outcomeThrown    outcome = "BPMN_ERROR"
)

type outcomeError outcome

func (e outcomeError) Error() string {
	if e == outcomeError(outcomeNone) {
		return "job left without outcome"
	}
	return "job ended with " + string(e)
}

// outcomeClient remembers which terminal command the handler issued.
type outcomeClient struct {
	worker.JobClient
	outcome outcome
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.outcome = outcomeCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.outcome = outcomeFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.outcome = outcomeThrown
	return c.JobClient.NewThrowErrorCommand()
}
