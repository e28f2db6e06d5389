package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Record is one health probe observation.
type Record struct {
	Timestamp  time.Time
	Status     string // "up" or "down"
	LatencyMS  *float64
	HTTPStatus *int
	Error      string
}

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Prober issues liveness requests against the backend API.
type Prober struct {
	client  *resty.Client
	apiBase string
	now     func() time.Time
}

// NewProber creates a prober for the given API base URL with a fixed
// per-request timeout.
func NewProber(apiBase string, timeout time.Duration) *Prober {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	return &Prober{
		client:  client,
		apiBase: strings.TrimRight(apiBase, "/"),
		now:     time.Now,
	}
}

// Probe issues a single GET against {apiBase}/health and captures the
// outcome as a Record. It never returns an error: timeouts, connection
// failures and non-2xx responses all yield a "down" record, with latency
// measured up to the point of failure.
func (p *Prober) Probe(ctx context.Context) Record {
	rec := Record{Timestamp: p.now().UTC(), Status: StatusDown}

	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Get(p.apiBase + "/health")
	latency := round2(float64(time.Since(start)) / float64(time.Millisecond))
	rec.LatencyMS = &latency

	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	code := resp.StatusCode()
	rec.HTTPStatus = &code
	if resp.IsSuccess() {
		rec.Status = StatusUp
	} else {
		rec.Error = fmt.Sprintf("HTTP %d", code)
	}
	return rec
}
