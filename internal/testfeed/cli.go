package testfeed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/kestrel-intel/kestrel/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "feed_test_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the feed test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Kestrel Feed Test Tool
======================

A concurrent tool for exercising the Kestrel intake and briefing pipeline.

Usage:
  go run cmd/feedgen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -candidates int
        Number of candidates to generate and submit (default 10000)
  -batch int
        Number of candidates per ingest batch (default 100)
  -items int
        Number of items to request per briefing (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -user string
        User identifier used for briefing requests (default "feedgen")
  -output string
        Output file for generated candidates (default: generated_candidates_TIMESTAMP.json)
  -log string
        Log file for test output (default: feed_test_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/feedgen/main.go

  # Test with custom parameters
  go run cmd/feedgen/main.go -candidates 50000 -workers 16 -url http://localhost:8080

  # Test with verbose output
  go run cmd/feedgen/main.go -verbose -candidates 10000

  # Test with custom log file
  go run cmd/feedgen/main.go -candidates 50000 -log my_test.log
`)
}
