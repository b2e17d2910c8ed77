// Package types contains wire-shaped types shared between the service layer
// and the HTTP adapter.
package types

import (
	"time"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// BriefingRequest describes a single briefing run.
type BriefingRequest struct {
	RequestID    string             `json:"request_id"`
	UserID       string             `json:"user_id"`
	TopicWeights map[string]float64 `json:"topic_weights,omitempty"`
	MaxItems     int                `json:"max_items,omitempty"`
}

// CandidateView mirrors model.Candidate for JSON output, with pipeline-assigned
// fields populated.
type CandidateView struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Source           string    `json:"source"`
	Summary          string    `json:"summary,omitempty"`
	URL              string    `json:"url,omitempty"`
	Topic            string    `json:"topic"`
	EvidenceScore    float64   `json:"evidence_score"`
	NoveltyScore     float64   `json:"novelty_score"`
	PreferenceFit    float64   `json:"preference_fit"`
	PredictionSignal float64   `json:"prediction_signal"`
	DiscoveredBy     string    `json:"discovered_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	CompositeScore   float64   `json:"composite_score"`
	Urgency          string    `json:"urgency"`
	Lifecycle        string    `json:"lifecycle"`
	Regions          []string  `json:"regions,omitempty"`
	CorroboratedBy   []string  `json:"corroborated_by,omitempty"`
}

// ConfidenceView mirrors model.ConfidenceBand.
type ConfidenceView struct {
	Low            float64  `json:"low"`
	Mid            float64  `json:"mid"`
	High           float64  `json:"high"`
	Label          string   `json:"label"`
	KeyAssumptions []string `json:"key_assumptions,omitempty"`
}

// ThreadView mirrors model.NarrativeThread.
type ThreadView struct {
	ThreadID    string          `json:"thread_id"`
	Headline    string          `json:"headline"`
	Members     []CandidateView `json:"members"`
	Urgency     string          `json:"urgency"`
	Lifecycle   string          `json:"lifecycle"`
	SourceCount int             `json:"source_count"`
	Score       float64         `json:"score"`
	Confidence  ConfidenceView  `json:"confidence"`
}

// GeoRiskView mirrors model.GeoRiskEntry.
type GeoRiskView struct {
	Region          string   `json:"region"`
	RiskLevel       float64  `json:"risk_level"`
	PreviousLevel   float64  `json:"previous_level"`
	EscalationDelta float64  `json:"escalation_delta"`
	Escalating      bool     `json:"escalating"`
	Drivers         []string `json:"drivers,omitempty"`
}

// TrendView mirrors model.TrendSnapshot.
type TrendView struct {
	Topic               string  `json:"topic"`
	Velocity            float64 `json:"velocity"`
	BaselineVelocity    float64 `json:"baseline_velocity"`
	AnomalyScore        float64 `json:"anomaly_score"`
	IsEmerging          bool    `json:"is_emerging"`
	SampleWindowMinutes int     `json:"sample_window_minutes"`
}

// BriefingItem is one ranked story in a briefing.
type BriefingItem struct {
	Candidate        CandidateView  `json:"candidate"`
	CredibilityScore float64        `json:"credibility_score"`
	Confidence       ConfidenceView `json:"confidence"`
	ThreadID         string         `json:"thread_id,omitempty"`
}

// Briefing is the full output of one pipeline run.
type Briefing struct {
	RequestID   string                 `json:"request_id"`
	UserID      string                 `json:"user_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Items       []BriefingItem         `json:"items"`
	Threads     []ThreadView           `json:"threads"`
	GeoRisks    []GeoRiskView          `json:"geo_risks"`
	Trends      []TrendView            `json:"trends"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewCandidateView converts a domain candidate to its wire shape.
func NewCandidateView(c model.Candidate) CandidateView {
	return CandidateView{
		ID:               c.ID,
		Title:            c.Title,
		Source:           c.Source,
		Summary:          c.Summary,
		URL:              c.URL,
		Topic:            c.Topic,
		EvidenceScore:    c.EvidenceScore,
		NoveltyScore:     c.NoveltyScore,
		PreferenceFit:    c.PreferenceFit,
		PredictionSignal: c.PredictionSignal,
		DiscoveredBy:     c.DiscoveredBy,
		CreatedAt:        c.CreatedAt,
		CompositeScore:   c.CompositeScore(),
		Urgency:          string(c.Urgency),
		Lifecycle:        string(c.Lifecycle),
		Regions:          c.Regions,
		CorroboratedBy:   c.CorroboratedBy,
	}
}

// NewConfidenceView converts a confidence band to its wire shape.
func NewConfidenceView(b model.ConfidenceBand) ConfidenceView {
	return ConfidenceView{
		Low:            b.Low,
		Mid:            b.Mid,
		High:           b.High,
		Label:          b.Label(),
		KeyAssumptions: b.KeyAssumptions,
	}
}

// NewThreadView converts a narrative thread to its wire shape.
func NewThreadView(t model.NarrativeThread) ThreadView {
	members := make([]CandidateView, 0, len(t.Candidates))
	for _, c := range t.Candidates {
		members = append(members, NewCandidateView(*c))
	}
	return ThreadView{
		ThreadID:    t.ThreadID,
		Headline:    t.Headline,
		Members:     members,
		Urgency:     string(t.Urgency),
		Lifecycle:   string(t.Lifecycle),
		SourceCount: t.SourceCount,
		Score:       t.ThreadScore(),
		Confidence:  NewConfidenceView(t.Confidence),
	}
}

// NewGeoRiskView converts a geo-risk entry to its wire shape.
func NewGeoRiskView(e model.GeoRiskEntry) GeoRiskView {
	return GeoRiskView{
		Region:          e.Region,
		RiskLevel:       e.RiskLevel,
		PreviousLevel:   e.PreviousLevel,
		EscalationDelta: e.EscalationDelta,
		Escalating:      e.IsEscalating(),
		Drivers:         e.Drivers,
	}
}

// NewTrendView converts a trend snapshot to its wire shape.
func NewTrendView(s model.TrendSnapshot) TrendView {
	return TrendView{
		Topic:               s.Topic,
		Velocity:            s.Velocity,
		BaselineVelocity:    s.BaselineVelocity,
		AnomalyScore:        s.AnomalyScore,
		IsEmerging:          s.IsEmerging,
		SampleWindowMinutes: s.SampleWindowMinutes,
	}
}
