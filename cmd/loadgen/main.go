package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/podium/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumJudges     = 50
	defaultNumTeams      = 20
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultResubmitShare = 0.1
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numJudges  = flag.Int("judges", defaultNumJudges, "Number of judges to register")
		numTeams   = flag.Int("teams", defaultNumTeams, "Number of teams to vote on")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		resubmit   = flag.Float64("resubmit", defaultResubmitShare, "Fraction of batches submitted twice")
		outputFile = flag.String("output", "", "Output file for generated batches (default: generated_batches_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for test output (default: load_test_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	// Setup logging
	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &loadgen.Config{
		BaseURL:       *baseURL,
		NumJudges:     *numJudges,
		NumTeams:      *numTeams,
		Workers:       *workers,
		Timeout:       *timeout,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
		ResubmitShare: *resubmit,
	}

	// Run the test
	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		return
	}
}
