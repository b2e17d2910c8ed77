// Package model contains domain models passed between pipeline stages.
package model

import "time"

// Urgency classifies how time-critical a story is.
type Urgency string

// Urgency levels, least to most severe.
const (
	UrgencyRoutine  Urgency = "routine"
	UrgencyElevated Urgency = "elevated"
	UrgencyBreaking Urgency = "breaking"
	UrgencyCritical Urgency = "critical"
)

// Rank returns the severity rank of an urgency level. Unknown values rank
// below routine so a zero value never outranks a real classification.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyRoutine:
		return 1
	case UrgencyElevated:
		return 2
	case UrgencyBreaking:
		return 3
	case UrgencyCritical:
		return 4
	default:
		return 0
	}
}

// MaxUrgency returns the most severe of the given urgency levels.
func MaxUrgency(levels ...Urgency) Urgency {
	best := UrgencyRoutine
	for _, l := range levels {
		if l.Rank() > best.Rank() {
			best = l
		}
	}
	return best
}

// Lifecycle classifies where a story sits in its coverage arc.
type Lifecycle string

// Lifecycle stages. Severity ranking is distinct from chronological order:
// breaking outranks developing outranks ongoing.
const (
	LifecycleDeveloping Lifecycle = "developing"
	LifecycleBreaking   Lifecycle = "breaking"
	LifecycleOngoing    Lifecycle = "ongoing"
	LifecycleWaning     Lifecycle = "waning"
	LifecycleResolved   Lifecycle = "resolved"
)

// Rank returns the severity rank of a lifecycle stage.
func (l Lifecycle) Rank() int {
	switch l {
	case LifecycleResolved:
		return 1
	case LifecycleWaning:
		return 2
	case LifecycleOngoing:
		return 3
	case LifecycleDeveloping:
		return 4
	case LifecycleBreaking:
		return 5
	default:
		return 0
	}
}

// MaxLifecycle returns the most severe of the given lifecycle stages.
func MaxLifecycle(stages ...Lifecycle) Lifecycle {
	best := LifecycleResolved
	for _, s := range stages {
		if s.Rank() > best.Rank() {
			best = s
		}
	}
	return best
}

// CompositeWeights holds the blend weights for a candidate's four signals.
type CompositeWeights struct {
	Evidence   float64
	Novelty    float64
	Preference float64
	Prediction float64
}

// DefaultCompositeWeights returns the stock signal blend.
func DefaultCompositeWeights() CompositeWeights {
	return CompositeWeights{
		Evidence:   0.30,
		Novelty:    0.25,
		Preference: 0.30,
		Prediction: 0.15,
	}
}

// Score blends a candidate's four signals under these weights.
func (w CompositeWeights) Score(c Candidate) float64 {
	return w.Evidence*c.EvidenceScore +
		w.Novelty*c.NoveltyScore +
		w.Preference*c.PreferenceFit +
		w.Prediction*c.PredictionSignal
}

// Candidate represents a single discovered news/signal item flowing through
// the pipeline. The four scalar signals are expected to be in [0,1]; range
// validation happens at the adapter boundary, not here.
type Candidate struct {
	ID      string
	Title   string
	Source  string
	Summary string
	URL     string
	Topic   string

	EvidenceScore    float64 // source-type trust proxy
	NoveltyScore     float64 // recency/freshness
	PreferenceFit    float64 // match to requester's weighted topics
	PredictionSignal float64 // forward-looking signal strength

	DiscoveredBy string
	CreatedAt    time.Time

	// Assigned later in the pipeline.
	Urgency        Urgency
	Lifecycle      Lifecycle
	Regions        []string
	CorroboratedBy []string
}

// CompositeScore blends the four signals under the default weights.
// For valid signal inputs the result stays in [0,1].
func (c Candidate) CompositeScore() float64 {
	return DefaultCompositeWeights().Score(c)
}

// ScoreFunc computes a ranking score for a candidate. Stages default to
// Candidate.CompositeScore but accept an override so the signal blend stays a
// configuration concern.
type ScoreFunc func(Candidate) float64

// DefaultScore is the stock ScoreFunc.
func DefaultScore(c Candidate) float64 { return c.CompositeScore() }

// SourceReliability is per-source trust state maintained by the credibility
// tracker for the lifetime of the process.
type SourceReliability struct {
	SourceID           string
	ReliabilityScore   float64
	BiasRating         string
	HistoricalAccuracy float64
	CorroborationRate  float64
	TotalItemsSeen     int64
}

// TrustFactor blends reliability, accuracy and corroboration into one trust
// scalar in [0,1].
func (s SourceReliability) TrustFactor() float64 {
	return 0.5*s.ReliabilityScore + 0.3*s.HistoricalAccuracy + 0.2*s.CorroborationRate
}
