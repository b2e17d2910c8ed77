// Package scoring defines the contract for computing preference fit from a
// user's topic weight profile.
package scoring

import (
	"context"
	"fmt"
	"math"
)

// Default scoring configuration constants.
const (
	defaultTopicWeight = 0.5
	defaultBlendFactor = 0.6
)

// Option applies a configuration option to the InMemoryScorer.
type Option func(*InMemoryScorer)

// WithDefaultTopicWeight sets the weight assumed for topics the profile
// does not mention.
func WithDefaultTopicWeight(w float64) Option {
	return func(s *InMemoryScorer) {
		if w > 0 && w <= 1 {
			s.defaultWeight = w
		}
	}
}

// WithBlendFactor sets how much the topic weight pulls the fit away from
// the discovery-time baseline. Zero keeps the baseline untouched.
func WithBlendFactor(f float64) Option {
	return func(s *InMemoryScorer) {
		if f >= 0 && f <= 1 {
			s.blendFactor = f
		}
	}
}

// Input abstracts the candidate fields needed for preference scoring.
type Input struct {
	CandidateID  string
	Topic        string
	BaseFit      float64
	TopicWeights map[string]float64
}

// Result contains the computed preference fit for a candidate.
type Result struct {
	CandidateID   string
	PreferenceFit float64
}

// Scorer recomputes preference fit against a per-request topic profile.
type Scorer interface {
	// Score computes a fit, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// InMemoryScorer implements Scorer by blending the discovery-time fit with
// the requested topic weight.
type InMemoryScorer struct {
	defaultWeight float64
	blendFactor   float64
}

// NewInMemoryScorer creates a preference scorer with configuration options.
func NewInMemoryScorer(opts ...Option) *InMemoryScorer {
	s := &InMemoryScorer{
		defaultWeight: defaultTopicWeight,
		blendFactor:   defaultBlendFactor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the preference fit for the given input. An empty topic
// profile leaves the baseline fit untouched.
func (s *InMemoryScorer) Score(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	fit := in.BaseFit
	if len(in.TopicWeights) > 0 {
		weight, ok := in.TopicWeights[in.Topic]
		if !ok {
			weight = s.defaultWeight
		}
		fit = (1-s.blendFactor)*in.BaseFit + s.blendFactor*weight
	}

	fit = math.Max(0, math.Min(1, fit))

	return Result{
		CandidateID:   in.CandidateID,
		PreferenceFit: fit,
	}, nil
}
