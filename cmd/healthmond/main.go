package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studymap-backend/config"
	"studymap-backend/internal/health"
)

// healthmond probes the backend on an interval, appends each observation
// to the CSV health log and logs windowed uptime/latency metrics for the
// ops dashboard to pick up.
func main() {
	logger := log.New(os.Stdout, "studymap-healthmon ", log.LstdFlags)

	if err := godotenv.Load(); err == nil {
		logger.Println(".env file loaded")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	prober := health.NewProber(cfg.Health.APIBase, time.Duration(cfg.Health.TimeoutSeconds)*time.Second)
	logFile := health.NewCSVLog(cfg.Health.CSVPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Println("Shutdown signal received, stopping health monitor...")
		cancel()
	}()

	logger.Printf("probing %s every %s, logging to %s", cfg.Health.APIBase, cfg.Health.Interval, cfg.Health.CSVPath)

	cycle(ctx, logger, cfg, prober, logFile)

	timer := time.NewTimer(cfg.Health.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("Health monitor stopped")
			return
		case <-timer.C:
			cycle(ctx, logger, cfg, prober, logFile)
			timer.Reset(cfg.Health.Interval)
		}
	}
}

func cycle(ctx context.Context, logger *log.Logger, cfg *config.Config, prober *health.Prober, logFile *health.CSVLog) {
	rec := prober.Probe(ctx)
	if err := logFile.Append(rec); err != nil {
		logger.Printf("failed to append probe record: %v", err)
	}

	records, err := logFile.ReadWindow(cfg.Health.WindowMinutes)
	if err != nil {
		logger.Printf("failed to read probe window: %v", err)
		return
	}

	m := health.ComputeMetrics(records)
	avgLatency := "n/a"
	if m.AvgLatencyMS != nil {
		avgLatency = time.Duration(*m.AvgLatencyMS * float64(time.Millisecond)).String()
	}
	logger.Printf("status=%s uptime=%.2f%% avg_latency=%s downs=%d (window %dm, %d probes)",
		rec.Status, m.UptimePct, avgLatency, m.DownCount, cfg.Health.WindowMinutes, len(records))
}
