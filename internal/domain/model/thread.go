package model

// ConfidenceBand expresses scored uncertainty around a cluster of items.
type ConfidenceBand struct {
	Low            float64
	Mid            float64
	High           float64
	KeyAssumptions []string
}

// Label maps the band midpoint to a human-readable confidence label.
func (b ConfidenceBand) Label() string {
	if b.Mid >= 0.8 {
		return "high confidence"
	}
	if b.Mid >= 0.55 {
		return "moderate confidence"
	}
	return "low confidence"
}

// NarrativeThread is a cluster of near-duplicate candidates about the same
// story. Threads are recomputed per pipeline run and never persisted as
// standing entities.
type NarrativeThread struct {
	ThreadID    string
	Headline    string
	Candidates  []*Candidate // sorted by score, descending
	Lifecycle   Lifecycle
	Urgency     Urgency
	SourceCount int
	Confidence  ConfidenceBand
}

// ThreadScore ranks a thread by member quality, source diversity, and
// urgency. Pure function of thread state.
func (t NarrativeThread) ThreadScore() float64 {
	if len(t.Candidates) == 0 {
		return 0.0
	}
	var sum float64
	for _, c := range t.Candidates {
		sum += c.CompositeScore()
	}
	avg := sum / float64(len(t.Candidates))

	sourceBonus := 0.05 * float64(t.SourceCount)
	if sourceBonus > 0.15 {
		sourceBonus = 0.15
	}

	var urgencyBonus float64
	switch t.Urgency {
	case UrgencyElevated:
		urgencyBonus = 0.05
	case UrgencyBreaking:
		urgencyBonus = 0.15
	case UrgencyCritical:
		urgencyBonus = 0.25
	}

	score := avg + sourceBonus + urgencyBonus
	if score > 1.0 {
		return 1.0
	}
	return score
}

// GeoRiskEntry is a per-region risk snapshot produced by the geo-risk index.
type GeoRiskEntry struct {
	Region          string
	RiskLevel       float64
	PreviousLevel   float64
	EscalationDelta float64
	Drivers         []string
}

// IsEscalating reports whether the region moved meaningfully upward since the
// previous assessment.
func (e GeoRiskEntry) IsEscalating() bool {
	return e.EscalationDelta > 0.05
}

// TrendSnapshot is a per-topic velocity reading against a decaying baseline.
type TrendSnapshot struct {
	Topic               string
	Velocity            float64
	BaselineVelocity    float64
	AnomalyScore        float64
	IsEmerging          bool
	SampleWindowMinutes int
}
