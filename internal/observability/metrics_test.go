package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/leads", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/leads", "GET", 200, 30*time.Millisecond)
	m.RecordError("/leads", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/leads|GET|200"])
	assert.InDelta(t, 20.0, snap.AvgMs["/leads|GET|200"], 0.01)
	assert.Equal(t, int64(1), snap.Errors["/leads|POST|VALIDATION_FAILED"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
