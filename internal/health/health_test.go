package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestProbeUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	prober := NewProber(server.URL, 3*time.Second)
	rec := prober.Probe(context.Background())

	assert.Equal(t, StatusUp, rec.Status)
	require.NotNil(t, rec.HTTPStatus)
	assert.Equal(t, http.StatusOK, *rec.HTTPStatus)
	require.NotNil(t, rec.LatencyMS)
	assert.GreaterOrEqual(t, *rec.LatencyMS, 0.0)
	assert.Empty(t, rec.Error)
}

func TestProbeNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	prober := NewProber(server.URL+"/", 3*time.Second) // trailing slash is trimmed
	rec := prober.Probe(context.Background())

	assert.Equal(t, StatusDown, rec.Status)
	require.NotNil(t, rec.HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, *rec.HTTPStatus)
	assert.Equal(t, "HTTP 500", rec.Error)
	assert.NotNil(t, rec.LatencyMS)
}

func TestProbeConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	prober := NewProber(server.URL, time.Second)
	rec := prober.Probe(context.Background())

	assert.Equal(t, StatusDown, rec.Status)
	assert.Nil(t, rec.HTTPStatus)
	assert.NotEmpty(t, rec.Error)
	require.NotNil(t, rec.LatencyMS)
}

func TestCSVLogAppendAndReadWindow(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "backend_health.csv")
	logFile := NewCSVLogWithClock(path, func() time.Time { return now })

	recent := Record{
		Timestamp:  now.Add(-5 * time.Minute),
		Status:     StatusUp,
		LatencyMS:  floatPtr(12.34),
		HTTPStatus: intPtr(200),
	}
	old := Record{
		Timestamp: now.Add(-3 * time.Hour),
		Status:    StatusDown,
		Error:     "connection refused",
	}
	require.NoError(t, logFile.Append(old))
	require.NoError(t, logFile.Append(recent))

	// Header written exactly once.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp_iso"))

	records, err := logFile.ReadWindow(60)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusUp, records[0].Status)
	require.NotNil(t, records[0].LatencyMS)
	assert.Equal(t, 12.34, *records[0].LatencyMS)
	require.NotNil(t, records[0].HTTPStatus)
	assert.Equal(t, 200, *records[0].HTTPStatus)

	// A wider window includes the down record too.
	records, err = logFile.ReadWindow(300)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCSVLogSkipsMalformedRows(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "backend_health.csv")
	logFile := NewCSVLogWithClock(path, func() time.Time { return now })

	require.NoError(t, logFile.Append(Record{
		Timestamp: now.Add(-time.Minute), Status: StatusUp, LatencyMS: floatPtr(5),
	}))

	// Corrupt the log with a garbage line.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not-a-timestamp,up,abc\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, logFile.Append(Record{
		Timestamp: now.Add(-30 * time.Second), Status: StatusDown, Error: "HTTP 503",
	}))

	records, err := logFile.ReadWindow(60)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCSVLogReadWindowMissingFile(t *testing.T) {
	logFile := NewCSVLog(filepath.Join(t.TempDir(), "missing.csv"))
	records, err := logFile.ReadWindow(60)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestComputeMetrics(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty window", func(t *testing.T) {
		m := ComputeMetrics(nil)
		assert.Equal(t, 0.0, m.UptimePct)
		assert.Nil(t, m.AvgLatencyMS)
		assert.Zero(t, m.DownCount)
		assert.Nil(t, m.LastDownAt)
	})

	t.Run("mixed window", func(t *testing.T) {
		downAt := base.Add(2 * time.Minute)
		records := []Record{
			{Timestamp: base, Status: StatusUp, LatencyMS: floatPtr(10)},
			{Timestamp: base.Add(time.Minute), Status: StatusUp, LatencyMS: floatPtr(20)},
			{Timestamp: downAt, Status: StatusDown, Error: "HTTP 502"},
			{Timestamp: base.Add(3 * time.Minute), Status: StatusUp, LatencyMS: floatPtr(33)},
		}

		m := ComputeMetrics(records)
		assert.Equal(t, 75.0, m.UptimePct)
		require.NotNil(t, m.AvgLatencyMS)
		assert.Equal(t, 21.0, *m.AvgLatencyMS)
		assert.Equal(t, 1, m.DownCount)
		require.NotNil(t, m.LastDownAt)
		assert.True(t, m.LastDownAt.Equal(downAt))
	})

	t.Run("all down has no latency average", func(t *testing.T) {
		records := []Record{
			{Timestamp: base, Status: StatusDown, LatencyMS: floatPtr(100)},
			{Timestamp: base.Add(time.Minute), Status: StatusDown},
		}

		m := ComputeMetrics(records)
		assert.Equal(t, 0.0, m.UptimePct)
		assert.Nil(t, m.AvgLatencyMS)
		assert.Equal(t, 2, m.DownCount)
	})

	t.Run("rounding to two decimals", func(t *testing.T) {
		records := []Record{
			{Timestamp: base, Status: StatusUp, LatencyMS: floatPtr(10)},
			{Timestamp: base.Add(time.Minute), Status: StatusUp, LatencyMS: floatPtr(10)},
			{Timestamp: base.Add(2 * time.Minute), Status: StatusDown},
		}

		m := ComputeMetrics(records)
		assert.Equal(t, 66.67, m.UptimePct)
	})
}

func intPtr(v int) *int { return &v }
