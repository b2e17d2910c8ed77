package testfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// requestBriefing runs one briefing against the service and returns the
// parsed result.
func requestBriefing(ctx context.Context, config *Config, stats *Stats) (*Briefing, error) {
	log.Printf("requesting briefing for user %s (max %d items)...", config.UserID, config.MaxItems)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/briefing"

	payload := map[string]any{
		"request_id": uuid.New().String(),
		"user_id":    config.UserID,
		"max_items":  config.MaxItems,
		"topic_weights": map[string]float64{
			"markets":  0.8,
			"conflict": 0.9,
			burstTopic: 0.7,
		},
	}

	resp, err := client.Post(ctx, url, payload)
	if err != nil {
		return nil, fmt.Errorf("briefing request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read briefing response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var briefing Briefing
	if err := json.Unmarshal(body, &briefing); err != nil {
		return nil, fmt.Errorf("failed to parse briefing: %w", err)
	}

	stats.BriefingItems = len(briefing.Items)
	stats.BriefingThreads = len(briefing.Threads)

	log.Printf("briefing received: %d items, %d threads, %d regions, %d trends",
		len(briefing.Items), len(briefing.Threads), len(briefing.GeoRisks), len(briefing.Trends))

	return &briefing, nil
}

// requestBackfill asks for more stories beyond the briefing.
func requestBackfill(ctx context.Context, config *Config, briefing *Briefing, stats *Stats) ([]BriefingItem, error) {
	seen := make([]string, 0, len(briefing.Items))
	for _, item := range briefing.Items {
		seen = append(seen, item.Candidate.ID)
	}

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/more"

	resp, err := client.Post(ctx, url, map[string]any{
		"user_id":  config.UserID,
		"seen_ids": seen,
		"limit":    config.MaxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("backfill request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read backfill response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Items []BriefingItem `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse backfill: %w", err)
	}

	stats.BackfillItems = len(parsed.Items)
	log.Printf("backfill received: %d items", len(parsed.Items))

	return parsed.Items, nil
}

// fetchTrends reads the cached trend snapshots.
func fetchTrends(ctx context.Context, config *Config) ([]Trend, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/api/v1/trends")
	if err != nil {
		return nil, fmt.Errorf("trends request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read trends response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Trends []Trend `json:"trends"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse trends: %w", err)
	}
	return parsed.Trends, nil
}
