package loadgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Percentage conversion constant.
const (
	percentageMultiplier = 100
)

// Run executes the complete voting load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting podium load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("judges", config.NumJudges),
		logger.Int("teams", config.NumTeams),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Float64("resubmitShare", config.ResubmitShare),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate judges and establish their sessions
	judges := generateJudges(ctx, config)
	if err := registerAndLogin(ctx, config, judges, stats); err != nil {
		return fmt.Errorf("judge setup failed: %w", err)
	}

	// Step 3: Generate vote batches
	batches := generateBatches(ctx, config, judges, stats)

	// Step 4: Submit batches concurrently
	if err := submitBatches(ctx, config, judges, batches, stats); err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	// Step 5: Fetch the leaderboard
	results, err := fetchResults(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("results retrieval failed: %w", err)
	}

	// Step 6: Verify results
	if err := verifyResults(config, results, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Save batches to file
	if err := saveBatchesToFile(ctx, config, batches); err != nil {
		logger.Get().Warn(ctx, "failed to save batches to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load test completed successfully")
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

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveBatchesToFile saves the generated batches to a JSON file.
func saveBatchesToFile(ctx context.Context, config *Config, batches []VoteBatch) error {
	if len(batches) == 0 {
		return fmt.Errorf("no batches to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_batches_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, batch := range batches {
		jsonData, err := marshalBatch(batch)
		if err != nil {
			return fmt.Errorf("failed to marshal batch %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write batch %d: %w", i, err)
		}

		// Add comma except for last batch
		if i < len(batches)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "batches saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, batchesPerSecond float64

	if stats.BatchesSubmitted > 0 {
		successRate = float64(stats.BatchesSuccess) / float64(stats.BatchesSubmitted) * percentageMultiplier
	}

	if stats.Duration > 0 {
		batchesPerSecond = float64(stats.BatchesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("judgesRegistered", stats.JudgesRegistered),
		logger.Int("judgesLoggedIn", stats.JudgesLoggedIn),
		logger.Int("batchesGenerated", stats.BatchesGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesSuccess", stats.BatchesSuccess),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("resubmissions", stats.Resubmissions),
		logger.Int("resultEntries", stats.ResultEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("batchesPerSecond", batchesPerSecond))
}
