// Package clustering groups candidates into narrative threads and scores
// each thread with a confidence band.
package clustering

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

const (
	defaultSimilarityThreshold = 0.6
	defaultCrossSourceFactor   = 0.7
	threadIDHexLen             = 12

	threadSourceBonusStep = 0.05
	threadSourceBonusCap  = 0.15
)

// Option applies a configuration option to the Clusterer.
type Option func(*Clusterer)

// WithSimilarityThreshold sets the same-source title overlap needed to join
// a thread.
func WithSimilarityThreshold(t float64) Option {
	return func(c *Clusterer) {
		if t > 0 {
			c.similarityThreshold = t
		}
	}
}

// WithCrossSourceFactor sets the multiplier applied to the similarity
// threshold when the joining item comes from a different source than the
// thread seed.
func WithCrossSourceFactor(f float64) Option {
	return func(c *Clusterer) {
		if f > 0 && f <= 1 {
			c.crossSourceFactor = f
		}
	}
}

// WithScoreFunc overrides the composite score used to order seeds.
func WithScoreFunc(fn model.ScoreFunc) Option {
	return func(c *Clusterer) {
		if fn != nil {
			c.score = fn
		}
	}
}

// Clusterer builds narrative threads from a candidate pool. Threads never
// span topics, and every candidate lands in exactly one thread.
type Clusterer struct {
	similarityThreshold float64
	crossSourceFactor   float64
	score               model.ScoreFunc
}

// NewClusterer creates a thread clusterer with configuration options.
func NewClusterer(opts ...Option) *Clusterer {
	c := &Clusterer{
		similarityThreshold: defaultSimilarityThreshold,
		crossSourceFactor:   defaultCrossSourceFactor,
		score:               model.DefaultScore,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cluster partitions the pool into narrative threads, one sweep per topic.
// The highest-scoring unassigned item seeds each thread; remaining items
// join the first seed they are similar enough to. Cross-source joins get a
// relaxed threshold since independent outlets word the same story
// differently.
func (cl *Clusterer) Cluster(pool []*model.Candidate) []*model.NarrativeThread {
	byTopic := make(map[string][]*model.Candidate)
	topics := make([]string, 0)
	for _, c := range pool {
		if _, ok := byTopic[c.Topic]; !ok {
			topics = append(topics, c.Topic)
		}
		byTopic[c.Topic] = append(byTopic[c.Topic], c)
	}
	sort.Strings(topics)

	threads := make([]*model.NarrativeThread, 0, len(topics))
	for _, topic := range topics {
		threads = append(threads, cl.clusterTopic(topic, byTopic[topic])...)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].ThreadScore() > threads[j].ThreadScore()
	})
	return threads
}

func (cl *Clusterer) clusterTopic(topic string, items []*model.Candidate) []*model.NarrativeThread {
	ordered := make([]*model.Candidate, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return cl.score(*ordered[i]) > cl.score(*ordered[j])
	})

	assigned := make(map[string]bool, len(ordered))
	threads := make([]*model.NarrativeThread, 0)

	for _, seed := range ordered {
		if assigned[seed.ID] {
			continue
		}
		assigned[seed.ID] = true
		members := []*model.Candidate{seed}
		seedWords := titleWords(seed.Title)

		for _, other := range ordered {
			if assigned[other.ID] {
				continue
			}
			threshold := cl.similarityThreshold
			if other.Source != seed.Source {
				threshold *= cl.crossSourceFactor
			}
			if titleSimilarity(seedWords, titleWords(other.Title)) >= threshold {
				assigned[other.ID] = true
				members = append(members, other)
			}
		}

		threads = append(threads, cl.buildThread(topic, len(threads), members))
	}
	return threads
}

func (cl *Clusterer) buildThread(topic string, idx int, members []*model.Candidate) *model.NarrativeThread {
	lead := members[0]

	sources := make(map[string]struct{}, len(members))
	lifecycle := members[0].Lifecycle
	urgency := members[0].Urgency
	for _, m := range members {
		sources[m.Source] = struct{}{}
		lifecycle = model.MaxLifecycle(lifecycle, m.Lifecycle)
		urgency = model.MaxUrgency(urgency, m.Urgency)
	}

	return &model.NarrativeThread{
		ThreadID:    threadID(topic, idx, lead.ID),
		Headline:    lead.Title,
		Candidates:  members,
		Lifecycle:   lifecycle,
		Urgency:     urgency,
		SourceCount: len(sources),
		Confidence:  cl.confidenceBand(members, len(sources)),
	}
}

func threadID(topic string, idx int, leadID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", topic, idx, leadID)))
	return hex.EncodeToString(sum[:])[:threadIDHexLen]
}

func titleWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words[w] = struct{}{}
	}
	return words
}

func titleSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
