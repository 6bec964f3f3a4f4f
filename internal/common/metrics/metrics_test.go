// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordParsingError(t *testing.T) {
	before := testutil.ToFloat64(ParsingErrors.WithLabelValues("postal_code"))

	RecordParsingError([]string{"postal_code", "birth_date"})

	assert.Equal(t, before+1, testutil.ToFloat64(ParsingErrors.WithLabelValues("postal_code")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ParsingErrors.WithLabelValues("birth_date")), 1.0)
}

func TestWorkerJobMetrics(t *testing.T) {
	WorkerJobsActive.WithLabelValues("test-task").Inc()
	WorkerJobsActive.WithLabelValues("test-task").Dec()
	WorkerJobsCompleted.WithLabelValues("test-task").Inc()

	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues("test-task")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("test-task")))
}
