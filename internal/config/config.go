// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with safe hardcoded defaults.
// - Anything injectable at construction time lives here: tier tables, weight
//   sets, thresholds, windows. Missing values fall back to defaults silently.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// IntakeQueueSize bounds the in-memory candidate intake queue.
	IntakeQueueSize int `koanf:"intake_queue_size"`

	// WorkerCount sets the number of intake workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the candidate-id dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// PoolSize bounds the working candidate pool; oldest items fall off.
	PoolSize int `koanf:"pool_size"`

	// DefaultMaxItems caps the ranked item count in a briefing.
	DefaultMaxItems int `koanf:"default_max_items"`

	// ReserveEntries bounds the backfill reserve store.
	ReserveEntries int `koanf:"reserve_entries"`

	Intelligence Intelligence `koanf:"intelligence"`
}

// Intelligence holds the tunable policy surface of the pipeline stages.
type Intelligence struct {
	// CompositeWeights blends the four candidate signals.
	CompositeWeights CompositeWeights `koanf:"composite_weights"`

	// MaxItemsPerSource caps per-source representation in ranked output.
	MaxItemsPerSource int `koanf:"max_items_per_source"`

	Credibility   Credibility           `koanf:"credibility"`
	SourceTiers   map[string]SourceTier `koanf:"source_tiers"`
	BiasProfiles  map[string]string     `koanf:"bias_profiles"`
	Corroboration Corroboration         `koanf:"corroboration"`
	Urgency       Urgency               `koanf:"urgency"`
	Clustering    Clustering            `koanf:"clustering"`
	GeoRisk       GeoRisk               `koanf:"georisk"`
	Trends        Trends                `koanf:"trends"`
}

// CompositeWeights blends a candidate's four scalar signals.
type CompositeWeights struct {
	Evidence   float64 `koanf:"evidence"`
	Novelty    float64 `koanf:"novelty"`
	Preference float64 `koanf:"preference"`
	Prediction float64 `koanf:"prediction"`
}

// SourceTier names a reliability tier and its member sources.
type SourceTier struct {
	Sources         []string `koanf:"sources"`
	BaseReliability float64  `koanf:"base_reliability"`
}

// Credibility holds the blended scoring weights of the credibility tracker.
type Credibility struct {
	CompositeWeight        float64 `koanf:"composite_weight"`
	TrustWeight            float64 `koanf:"trust_weight"`
	EvidenceWeight         float64 `koanf:"evidence_weight"`
	BonusPerSource         float64 `koanf:"corroboration_bonus_per_source"`
	BonusCap               float64 `koanf:"corroboration_bonus_cap"`
	CorroborationIncrement float64 `koanf:"corroboration_increment"`
	UnknownBase            float64 `koanf:"unknown_base_reliability"`
	MaxSources             int     `koanf:"max_sources"`
}

// Corroboration tunes the cross-source corroboration detector.
type Corroboration struct {
	JaccardThreshold       float64 `koanf:"jaccard_threshold"`
	TopicBreadthMinSources int     `koanf:"topic_breadth_min_sources"`
}

// Urgency tunes the breaking-news classifier.
type Urgency struct {
	VelocityWindowMinutes   int      `koanf:"velocity_window_minutes"`
	BreakingSourceThreshold int      `koanf:"breaking_source_threshold"`
	RecencyElevatedMinutes  int      `koanf:"recency_elevated_minutes"`
	WaningNoveltyThreshold  float64  `koanf:"waning_novelty_threshold"`
	VelocityCritical        float64  `koanf:"velocity_critical"`
	VelocityBreaking        float64  `koanf:"velocity_breaking"`
	VelocityElevated        float64  `koanf:"velocity_elevated"`
	BreakingKeywords        []string `koanf:"breaking_keywords"`
	ElevatedKeywords        []string `koanf:"elevated_keywords"`
}

// Clustering tunes narrative-thread formation.
type Clustering struct {
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	CrossSourceFactor   float64 `koanf:"cross_source_factor"`
}

// GeoRisk tunes the regional risk index.
type GeoRisk struct {
	Regions               map[string][]string `koanf:"regions"`
	EscalationKeywords    []string            `koanf:"escalation_keywords"`
	DeescalationKeywords  []string            `koanf:"deescalation_keywords"`
	DefaultPreviousRisk   float64             `koanf:"default_previous_risk"`
	MaxDrivers            int                 `koanf:"max_drivers"`
	BaseWeight            float64             `koanf:"base_weight"`
	EscalationPerKeyword  float64             `koanf:"escalation_per_keyword"`
	VolumePerItem         float64             `koanf:"volume_per_item"`
	VolumeCap             float64             `koanf:"volume_cap"`
	UrgencyFactorCritical float64             `koanf:"urgency_factor_critical"`
	UrgencyFactorBreaking float64             `koanf:"urgency_factor_breaking"`
	UrgencyFactorElevated float64             `koanf:"urgency_factor_elevated"`
}

// Trends tunes the trend anomaly detector.
type Trends struct {
	WindowMinutes    int     `koanf:"window_minutes"`
	AnomalyThreshold float64 `koanf:"anomaly_threshold"`
	BaselineDecay    float64 `koanf:"baseline_decay"`
	MaxTopics        int     `koanf:"max_topics"`
	MinSample        int     `koanf:"min_sample"`
}

// New creates a Config populated with the built-in defaults. Every value can
// be overridden by file or environment via Load.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9090",
		IntakeQueueSize: 100_000,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      500_000,
		PoolSize:        10_000,
		DefaultMaxItems: 10,
		ReserveEntries:  1_000,
		Intelligence: Intelligence{
			CompositeWeights: CompositeWeights{
				Evidence:   0.30,
				Novelty:    0.25,
				Preference: 0.30,
				Prediction: 0.15,
			},
			MaxItemsPerSource: 3,
			Credibility: Credibility{
				CompositeWeight:        0.70,
				TrustWeight:            0.20,
				EvidenceWeight:         0.10,
				BonusPerSource:         0.08,
				BonusCap:               0.20,
				CorroborationIncrement: 0.02,
				UnknownBase:            0.50,
				MaxSources:             500,
			},
			SourceTiers: map[string]SourceTier{
				"tier_1":        {Sources: []string{"reuters", "ap", "bbc", "guardian", "ft"}, BaseReliability: 0.85},
				"tier_1b":       {Sources: []string{"aljazeera"}, BaseReliability: 0.78},
				"tier_academic": {Sources: []string{"arxiv"}, BaseReliability: 0.72},
				"tier_2":        {Sources: []string{"x", "reddit", "web", "hackernews", "gdelt"}, BaseReliability: 0.55},
			},
			BiasProfiles: map[string]string{
				"reuters": "center", "ap": "center", "bbc": "center-left",
				"guardian": "left-leaning", "ft": "center-right",
				"aljazeera": "center", "x": "variable", "reddit": "community-driven",
				"web": "unverified", "arxiv": "academic", "hackernews": "tech-community",
				"gdelt": "event-based",
			},
			Corroboration: Corroboration{
				JaccardThreshold:       0.25,
				TopicBreadthMinSources: 3,
			},
			Urgency: Urgency{
				VelocityWindowMinutes:   30,
				BreakingSourceThreshold: 3,
				RecencyElevatedMinutes:  5,
				WaningNoveltyThreshold:  0.3,
				VelocityCritical:        0.8,
				VelocityBreaking:        0.5,
				VelocityElevated:        0.3,
			},
			Clustering: Clustering{
				SimilarityThreshold: 0.6,
				CrossSourceFactor:   0.7,
			},
			GeoRisk: GeoRisk{
				DefaultPreviousRisk:   0.3,
				MaxDrivers:            5,
				BaseWeight:            0.4,
				EscalationPerKeyword:  0.03,
				VolumePerItem:         0.02,
				VolumeCap:             0.15,
				UrgencyFactorCritical: 0.3,
				UrgencyFactorBreaking: 0.2,
				UrgencyFactorElevated: 0.1,
			},
			Trends: Trends{
				WindowMinutes:    60,
				AnomalyThreshold: 2.0,
				BaselineDecay:    0.8,
				MaxTopics:        200,
				MinSample:        2,
			},
		},
	}
}
