package credibility

import (
	"sort"
	"sync"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultCompositeWeight        = 0.70
	defaultTrustWeight            = 0.20
	defaultEvidenceWeight         = 0.10
	defaultBonusPerSource         = 0.08
	defaultBonusCap               = 0.20
	defaultCorroborationIncrement = 0.02
	defaultMaxSources             = 500
	initialCorroborationRate      = 0.5
)

// Weights holds the blend used by ScoreCandidate.
type Weights struct {
	Composite      float64
	Trust          float64
	Evidence       float64
	BonusPerSource float64
	BonusCap       float64
}

// DefaultWeights returns the stock credibility blend.
func DefaultWeights() Weights {
	return Weights{
		Composite:      defaultCompositeWeight,
		Trust:          defaultTrustWeight,
		Evidence:       defaultEvidenceWeight,
		BonusPerSource: defaultBonusPerSource,
		BonusCap:       defaultBonusCap,
	}
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTierTable sets the source tier registry.
func WithTierTable(t *TierTable) Option {
	return func(tr *Tracker) {
		if t != nil {
			tr.tiers = t
		}
	}
}

// WithWeights sets the score blend weights. Non-positive fields keep their
// defaults so partial config degrades gracefully.
func WithWeights(w Weights) Option {
	return func(tr *Tracker) {
		if w.Composite > 0 {
			tr.weights.Composite = w.Composite
		}
		if w.Trust > 0 {
			tr.weights.Trust = w.Trust
		}
		if w.Evidence > 0 {
			tr.weights.Evidence = w.Evidence
		}
		if w.BonusPerSource > 0 {
			tr.weights.BonusPerSource = w.BonusPerSource
		}
		if w.BonusCap > 0 {
			tr.weights.BonusCap = w.BonusCap
		}
	}
}

// WithCorroborationIncrement sets the per-event corroboration rate step.
func WithCorroborationIncrement(inc float64) Option {
	return func(tr *Tracker) {
		if inc > 0 {
			tr.corroborationIncrement = inc
		}
	}
}

// WithMaxSources caps the number of tracked sources.
func WithMaxSources(n int) Option {
	return func(tr *Tracker) {
		if n > 0 {
			tr.maxSources = n
		}
	}
}

// WithScoreFunc overrides the composite score used in the blend.
func WithScoreFunc(fn model.ScoreFunc) Option {
	return func(tr *Tracker) {
		if fn != nil {
			tr.score = fn
		}
	}
}

// Tracker maintains per-source reliability state. Safe for concurrent use;
// the surrounding orchestrator still serializes pipeline runs, but intake
// workers record items concurrently.
type Tracker struct {
	mu      sync.RWMutex
	sources map[string]*model.SourceReliability

	tiers                  *TierTable
	weights                Weights
	corroborationIncrement float64
	maxSources             int
	score                  model.ScoreFunc
}

// NewTracker creates a credibility tracker with configuration options.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		sources:                make(map[string]*model.SourceReliability),
		tiers:                  NewTierTable(nil, nil, 0),
		weights:                DefaultWeights(),
		corroborationIncrement: defaultCorroborationIncrement,
		maxSources:             defaultMaxSources,
		score:                  model.DefaultScore,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetSource returns the reliability state for a source, lazily initializing
// unseen sources from the tier table.
func (t *Tracker) GetSource(sourceID string) model.SourceReliability {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.getLocked(sourceID)
}

func (t *Tracker) getLocked(sourceID string) *model.SourceReliability {
	if sr, ok := t.sources[sourceID]; ok {
		return sr
	}
	// Evict the least-active unknown-tier source when at capacity. Sources
	// belonging to a known tier are never evicted.
	if len(t.sources) >= t.maxSources {
		t.evictLeastSeenLocked()
	}
	base := t.tiers.BaseReliability(sourceID)
	sr := &model.SourceReliability{
		SourceID:           sourceID,
		ReliabilityScore:   base,
		BiasRating:         t.tiers.Bias(sourceID),
		HistoricalAccuracy: base,
		CorroborationRate:  initialCorroborationRate,
	}
	t.sources[sourceID] = sr
	return sr
}

func (t *Tracker) evictLeastSeenLocked() {
	victimID := ""
	var victimSeen int64
	for id, sr := range t.sources {
		if t.tiers.IsKnown(id) {
			continue
		}
		if victimID == "" || sr.TotalItemsSeen < victimSeen {
			victimID = id
			victimSeen = sr.TotalItemsSeen
		}
	}
	if victimID != "" {
		delete(t.sources, victimID)
	}
}

// RecordItem increments the seen-counter for the item's source.
func (t *Tracker) RecordItem(c model.Candidate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.getLocked(c.Source).TotalItemsSeen++
}

// RecordCorroboration bumps the corroboration rate for both sources,
// capped at 1.0.
func (t *Tracker) RecordCorroboration(sourceA, sourceB string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range []string{sourceA, sourceB} {
		sr := t.getLocked(id)
		sr.CorroborationRate = min(1.0, sr.CorroborationRate+t.corroborationIncrement)
	}
}

// ScoreCandidate blends the composite score with source trust, corroboration
// bonus, and the raw evidence signal. The only clamp is the outer min so
// overflow behavior stays observable in tests.
func (t *Tracker) ScoreCandidate(c model.Candidate) float64 {
	t.mu.Lock()
	trust := t.getLocked(c.Source).TrustFactor()
	t.mu.Unlock()

	bonus := min(t.weights.BonusCap, t.weights.BonusPerSource*float64(len(c.CorroboratedBy)))
	score := t.score(c)*t.weights.Composite +
		trust*t.weights.Trust +
		bonus +
		c.EvidenceScore*t.weights.Evidence
	return min(1.0, score)
}

// SourcesByTier returns known source IDs grouped by tier, plus any seen
// sources outside every tier under "unknown".
func (t *Tracker) SourcesByTier() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := t.tiers.AllTiers()
	var unknown []string
	for id := range t.sources {
		if !t.tiers.IsKnown(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		out[TierUnknown] = unknown
	}
	return out
}

// Snapshot returns a copy of all tracked source state, keyed by source id.
func (t *Tracker) Snapshot() map[string]model.SourceReliability {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]model.SourceReliability, len(t.sources))
	for id, sr := range t.sources {
		out[id] = *sr
	}
	return out
}

// Size returns the number of tracked sources.
func (t *Tracker) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sources)
}
