package health

import (
	"math"
	"time"
)

// Metrics summarizes a window of probe records.
type Metrics struct {
	UptimePct    float64    `json:"uptime_pct"`
	AvgLatencyMS *float64   `json:"avg_latency_ms"`
	DownCount    int        `json:"down_count"`
	LastDownAt   *time.Time `json:"last_down_at"`
}

// ComputeMetrics derives uptime and latency statistics from a record
// window. An empty window yields zero uptime and no latency average;
// the latency average only considers successful probes that carried a
// latency value.
func ComputeMetrics(records []Record) Metrics {
	var m Metrics
	if len(records) == 0 {
		return m
	}

	ups := 0
	latencySum := 0.0
	latencyCount := 0
	for _, rec := range records {
		if rec.Status == StatusUp {
			ups++
			if rec.LatencyMS != nil {
				latencySum += *rec.LatencyMS
				latencyCount++
			}
		} else {
			m.DownCount++
		}
	}

	m.UptimePct = round2(float64(ups) / float64(len(records)) * 100)
	if latencyCount > 0 {
		avg := round2(latencySum / float64(latencyCount))
		m.AvgLatencyMS = &avg
	}

	// Most recent down, scanning newest to oldest.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Status != StatusUp {
			ts := records[i].Timestamp
			m.LastDownAt = &ts
			break
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
