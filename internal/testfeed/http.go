package testfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitBatches submits candidate batches concurrently using worker pools.
func submitBatches(ctx context.Context, config *Config, candidates []Candidate, stats *Stats) error {
	batches := make([][]Candidate, 0, len(candidates)/config.BatchSize+1)
	for start := 0; start < len(candidates); start += config.BatchSize {
		end := minInt(start+config.BatchSize, len(candidates))
		batches = append(batches, candidates[start:end])
	}

	log.Printf("submitting %d candidates in %d batches with %d workers...", len(candidates), len(batches), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/ingest"

	var (
		accepted  int64
		duplicate int64
		rejected  int64
		failed    int64
		submitted int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	batchChan := make(chan []Candidate, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for batch := range batchChan {
				select {
				case <-ctx.Done():
					return
				default:
					ack, err := submitSingleBatch(ctx, client, url, batch)
					atomic.AddInt64(&submitted, 1)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("batch submission failed: %v", err)
						}
						continue
					}
					atomic.AddInt64(&accepted, int64(ack.Accepted))
					atomic.AddInt64(&duplicate, int64(ack.Duplicates))
					atomic.AddInt64(&rejected, int64(ack.Rejected))

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("progress: %d/%d batches (accepted: %d, duplicate: %d, rejected: %d, failed: %d)",
							atomic.LoadInt64(&submitted), len(batches),
							atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate),
							atomic.LoadInt64(&rejected), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.CandidatesAccepted = int(atomic.LoadInt64(&accepted))
	stats.CandidatesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.CandidatesRejected = int(atomic.LoadInt64(&rejected))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`candidate submission completed:
   Accepted: %d
   Duplicate: %d
   Rejected: %d
   Failed batches: %d
`, stats.CandidatesAccepted, stats.CandidatesDuplicate, stats.CandidatesRejected, stats.BatchesFailed)

	return nil
}

// submitSingleBatch posts one ingest request and parses the ack.
func submitSingleBatch(ctx context.Context, client *HTTPClient, url string, batch []Candidate) (IngestAck, error) {
	resp, err := client.Post(ctx, url, map[string]any{"items": batch})
	if err != nil {
		return IngestAck{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return IngestAck{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusAccepted {
		return IngestAck{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var ack IngestAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return IngestAck{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return ack, nil
}
