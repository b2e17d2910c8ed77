package testfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kestrel-intel/kestrel/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes the complete feed test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting kestrel feed test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("candidates", config.NumCandidates),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("userID", config.UserID),
		logger.Bool("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	candidates, err := generateCandidates(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("candidate generation failed: %w", err)
	}

	if err := submitBatches(ctx, config, candidates, stats); err != nil {
		return fmt.Errorf("candidate submission failed: %w", err)
	}

	// Let the intake workers drain the queue before asking for a briefing.
	logger.Get().Info(ctx, "waiting for intake to settle")
	time.Sleep(IntakeSettleDelay)

	briefing, err := requestBriefing(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("briefing failed: %w", err)
	}

	backfill, err := requestBackfill(ctx, config, briefing, stats)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	trends, err := fetchTrends(ctx, config)
	if err != nil {
		return fmt.Errorf("trend fetch failed: %w", err)
	}

	if err := verifyResults(ctx, config, briefing, backfill, trends); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if err := saveCandidatesToFile(ctx, config, candidates); err != nil {
		logger.Get().Warn(ctx, "failed to save candidates to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveCandidatesToFile saves the generated candidates to a JSON file.
func saveCandidatesToFile(ctx context.Context, config *Config, candidates []Candidate) error {
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_candidates_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "candidates saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, candidatesPerSecond float64

	submitted := stats.CandidatesAccepted + stats.CandidatesDuplicate + stats.CandidatesRejected
	if submitted > 0 {
		acceptRate = float64(stats.CandidatesAccepted) / float64(submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		candidatesPerSecond = float64(submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("candidatesGenerated", stats.CandidatesGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("candidatesAccepted", stats.CandidatesAccepted),
		logger.Int("candidatesDuplicate", stats.CandidatesDuplicate),
		logger.Int("candidatesRejected", stats.CandidatesRejected),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("briefingItems", stats.BriefingItems),
		logger.Int("briefingThreads", stats.BriefingThreads),
		logger.Int("backfillItems", stats.BackfillItems),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("candidatesPerSecond", candidatesPerSecond))
}
