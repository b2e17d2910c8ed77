package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/kestrel-intel/kestrel/internal/testfeed"
)

// Default configuration constants.
const (
	defaultNumCandidates = 10000
	defaultBatchSize     = 100
	defaultMaxItems      = 10
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9090", "Base URL of the service")
		numCandidates = flag.Int("candidates", defaultNumCandidates, "Number of candidates to generate and submit")
		batchSize     = flag.Int("batch", defaultBatchSize, "Number of candidates per ingest batch")
		maxItems      = flag.Int("items", defaultMaxItems, "Number of items to request per briefing")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		userID        = flag.String("user", "feedgen", "User identifier used for briefing requests")
		outputFile    = flag.String("output", "", "Output file for generated candidates (default: generated_candidates_TIMESTAMP.json)")
		logFile       = flag.String("log", "", "Log file for test output (default: feed_test_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testfeed.ShowHelp()
		return
	}

	// Setup logging
	if err := testfeed.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testfeed.Config{
		BaseURL:       *baseURL,
		NumCandidates: *numCandidates,
		BatchSize:     *batchSize,
		MaxItems:      *maxItems,
		Workers:       *workers,
		Timeout:       *timeout,
		UserID:        *userID,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	// Run the test
	if err := testfeed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
