// Package trends detects topic velocity anomalies against a decaying
// per-topic baseline.
package trends

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

const (
	defaultSampleWindow   = 30 * time.Minute
	defaultBaselineDecay  = 0.8
	defaultInitialBase    = 0.3
	defaultEmergingRatio  = 2.0
	defaultMinSampleCount = 2
	defaultMaxTopics      = 200
	minBaselineDivisor    = 0.01
	placeholderHost       = "example.com"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithSampleWindow sets the recency window used for topic velocity.
func WithSampleWindow(w time.Duration) Option {
	return func(d *Detector) {
		if w > 0 {
			d.sampleWindow = w
		}
	}
}

// WithBaselineDecay sets the exponential decay factor applied to the
// baseline on every analysis. Must be in (0,1).
func WithBaselineDecay(decay float64) Option {
	return func(d *Detector) {
		if decay > 0 && decay < 1 {
			d.baselineDecay = decay
		}
	}
}

// WithEmergingRatio sets the anomaly score at which a topic is flagged
// emerging.
func WithEmergingRatio(r float64) Option {
	return func(d *Detector) {
		if r > 0 {
			d.emergingRatio = r
		}
	}
}

// WithMaxTopics bounds the number of tracked topic baselines.
func WithMaxTopics(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxTopics = n
		}
	}
}

// WithMinSample sets the minimum per-batch topic count needed before a topic
// can be flagged emerging.
func WithMinSample(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.minSampleCount = n
		}
	}
}

// WithNow injects a clock for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// Detector tracks topic baselines across analyses. Safe for concurrent use.
type Detector struct {
	mu sync.Mutex

	sampleWindow   time.Duration
	baselineDecay  float64
	initialBase    float64
	emergingRatio  float64
	minSampleCount int
	maxTopics      int
	now            func() time.Time

	baselines map[string]float64
}

// NewDetector creates a trend detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		sampleWindow:   defaultSampleWindow,
		baselineDecay:  defaultBaselineDecay,
		initialBase:    defaultInitialBase,
		emergingRatio:  defaultEmergingRatio,
		minSampleCount: defaultMinSampleCount,
		maxTopics:      defaultMaxTopics,
		now:            time.Now,
		baselines:      make(map[string]float64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Analyze computes per-topic velocity for the pool, folds it into each
// topic's decayed baseline, and returns snapshots sorted by anomaly score
// descending. Placeholder items are excluded from the counts.
func (d *Detector) Analyze(pool []*model.Candidate) []model.TrendSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	recent := make(map[string]int)
	total := make(map[string]int)
	for _, c := range pool {
		if strings.Contains(c.URL, placeholderHost) {
			continue
		}
		total[c.Topic]++
		if now.Sub(c.CreatedAt) <= d.sampleWindow {
			recent[c.Topic]++
		}
	}

	snapshots := make([]model.TrendSnapshot, 0, len(total))
	for topic, n := range total {
		velocity := float64(recent[topic]) / float64(n)

		baseline, tracked := d.baselines[topic]
		if !tracked {
			d.evictIfFullLocked()
			baseline = d.initialBase
		}
		anomaly := velocity / maxFloat(baseline, minBaselineDivisor)
		d.baselines[topic] = d.baselineDecay*baseline + (1-d.baselineDecay)*velocity

		snapshots = append(snapshots, model.TrendSnapshot{
			Topic:               topic,
			Velocity:            velocity,
			BaselineVelocity:    baseline,
			AnomalyScore:        anomaly,
			IsEmerging:          anomaly >= d.emergingRatio && n >= d.minSampleCount,
			SampleWindowMinutes: int(d.sampleWindow.Minutes()),
		})
	}

	sort.SliceStable(snapshots, func(a, b int) bool {
		if snapshots[a].AnomalyScore != snapshots[b].AnomalyScore {
			return snapshots[a].AnomalyScore > snapshots[b].AnomalyScore
		}
		return snapshots[a].Topic < snapshots[b].Topic
	})
	return snapshots
}

// EmergingTopics filters a snapshot list down to the emerging ones.
func EmergingTopics(snapshots []model.TrendSnapshot) []model.TrendSnapshot {
	out := make([]model.TrendSnapshot, 0)
	for _, s := range snapshots {
		if s.IsEmerging {
			out = append(out, s)
		}
	}
	return out
}

// evictIfFullLocked drops the lowest-baseline topic when the tracker is at
// capacity, so persistent topics survive over one-off noise.
func (d *Detector) evictIfFullLocked() {
	if len(d.baselines) < d.maxTopics {
		return
	}
	victim := ""
	lowest := 0.0
	for topic, base := range d.baselines {
		if victim == "" || base < lowest || (base == lowest && topic < victim) {
			victim = topic
			lowest = base
		}
	}
	delete(d.baselines, victim)
}

// Snapshot returns the current baseline per tracked topic.
func (d *Detector) Snapshot() map[string]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]float64, len(d.baselines))
	for topic, base := range d.baselines {
		out[topic] = base
	}
	return out
}

// Size returns the number of tracked topics.
func (d *Detector) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.baselines)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
