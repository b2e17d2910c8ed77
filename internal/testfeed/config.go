package testfeed

import "time"

// Config holds configuration for the feed test.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumCandidates int           // Number of candidates to generate
	BatchSize     int           // Candidates per ingest request
	MaxItems      int           // Ranked item cap for the briefing request
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	UserID        string        // Requester id used for briefing and backfill
	OutputFile    string        // Output file for generated candidates
	LogFile       string        // Log file for test output
	Verbose       bool          // Enable verbose logging
}

// Candidate represents a candidate to be submitted.
type Candidate struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Source           string  `json:"source"`
	Summary          string  `json:"summary"`
	URL              string  `json:"url"`
	Topic            string  `json:"topic"`
	EvidenceScore    float64 `json:"evidence_score"`
	NoveltyScore     float64 `json:"novelty_score"`
	PreferenceFit    float64 `json:"preference_fit"`
	PredictionSignal float64 `json:"prediction_signal"`
	DiscoveredBy     string  `json:"discovered_by"`
	CreatedAt        string  `json:"created_at"`
}

// IngestAck represents the response from a batch submission.
type IngestAck struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

// BriefingItem is one ranked story in a briefing response.
type BriefingItem struct {
	Candidate        Candidate `json:"candidate"`
	CredibilityScore float64   `json:"credibility_score"`
	ThreadID         string    `json:"thread_id"`
}

// Thread is one narrative thread in a briefing response.
type Thread struct {
	ThreadID    string         `json:"thread_id"`
	Headline    string         `json:"headline"`
	Members     []Candidate    `json:"members"`
	SourceCount int            `json:"source_count"`
	Confidence  map[string]any `json:"confidence"`
}

// Briefing is the briefing response shape the test cares about.
type Briefing struct {
	RequestID string         `json:"request_id"`
	Items     []BriefingItem `json:"items"`
	Threads   []Thread       `json:"threads"`
	GeoRisks  []GeoRisk      `json:"geo_risks"`
	Trends    []Trend        `json:"trends"`
}

// GeoRisk is one regional risk entry.
type GeoRisk struct {
	Region    string  `json:"region"`
	RiskLevel float64 `json:"risk_level"`
}

// Trend is one topic trend snapshot.
type Trend struct {
	Topic        string  `json:"topic"`
	AnomalyScore float64 `json:"anomaly_score"`
	IsEmerging   bool    `json:"is_emerging"`
}

// Stats holds test statistics.
type Stats struct {
	CandidatesGenerated int
	BatchesSubmitted    int
	CandidatesAccepted  int
	CandidatesDuplicate int
	CandidatesRejected  int
	BatchesFailed       int
	BriefingItems       int
	BriefingThreads     int
	BackfillItems       int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
