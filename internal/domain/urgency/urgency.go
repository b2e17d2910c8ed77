// Package urgency assigns per-item urgency tiers and lifecycle stages from
// keyword, velocity, source-count, and recency signals.
package urgency

import (
	"strings"
	"time"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// Default classifier configuration constants.
const (
	defaultVelocityWindow     = 30 * time.Minute
	defaultSourceThreshold    = 3
	defaultRecencyWindow      = 5 * time.Minute
	defaultWaningNovelty      = 0.3
	defaultVelocityCritical   = 0.8
	defaultVelocityBreaking   = 0.5
	defaultVelocityElevated   = 0.3
	breakingSourceExtraMargin = 2
	placeholderHost           = "example.com"
)

func defaultBreakingKeywords() []string {
	return []string{
		"breaking", "crisis", "war", "attack", "emergency", "collapse",
		"invasion", "coup", "assassination", "catastrophe", "pandemic",
		"shutdown", "explosion", "sanctions", "ceasefire", "martial_law",
	}
}

func defaultElevatedKeywords() []string {
	return []string{
		"escalation", "tension", "warning", "alert", "surge", "protest",
		"election", "summit", "treaty", "regulation", "volatility",
		"disruption", "shortage", "scandal", "indictment",
	}
}

// VelocityThresholds maps topic velocity to urgency tiers.
type VelocityThresholds struct {
	Critical float64
	Breaking float64
	Elevated float64
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithVelocityWindow sets the recent-count window for topic velocity.
func WithVelocityWindow(w time.Duration) Option {
	return func(d *Detector) {
		if w > 0 {
			d.velocityWindow = w
		}
	}
}

// WithSourceThreshold sets the distinct-source count that marks a topic
// elevated; threshold+2 marks it breaking.
func WithSourceThreshold(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sourceThreshold = n
		}
	}
}

// WithRecencyWindow sets the item age below which recency alone elevates.
func WithRecencyWindow(w time.Duration) Option {
	return func(d *Detector) {
		if w > 0 {
			d.recencyWindow = w
		}
	}
}

// WithWaningNoveltyThreshold sets the novelty score under which quiet
// stories are classified as waning.
func WithWaningNoveltyThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 {
			d.waningNovelty = t
		}
	}
}

// WithVelocityThresholds overrides the velocity tier cutoffs.
func WithVelocityThresholds(vt VelocityThresholds) Option {
	return func(d *Detector) {
		if vt.Critical > 0 {
			d.velocity.Critical = vt.Critical
		}
		if vt.Breaking > 0 {
			d.velocity.Breaking = vt.Breaking
		}
		if vt.Elevated > 0 {
			d.velocity.Elevated = vt.Elevated
		}
	}
}

// WithKeywords overrides the breaking/elevated keyword sets. Empty slices
// keep the defaults.
func WithKeywords(breaking, elevated []string) Option {
	return func(d *Detector) {
		if len(breaking) > 0 {
			d.breakingKeywords = toSet(breaking)
		}
		if len(elevated) > 0 {
			d.elevatedKeywords = toSet(elevated)
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

// Detector classifies urgency and lifecycle for a candidate batch. Stateless
// across calls; everything derives from the batch itself.
type Detector struct {
	velocityWindow  time.Duration
	sourceThreshold int
	recencyWindow   time.Duration
	waningNovelty   float64
	velocity        VelocityThresholds

	breakingKeywords map[string]struct{}
	elevatedKeywords map[string]struct{}

	now func() time.Time
}

// NewDetector creates an urgency detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		velocityWindow:  defaultVelocityWindow,
		sourceThreshold: defaultSourceThreshold,
		recencyWindow:   defaultRecencyWindow,
		waningNovelty:   defaultWaningNovelty,
		velocity: VelocityThresholds{
			Critical: defaultVelocityCritical,
			Breaking: defaultVelocityBreaking,
			Elevated: defaultVelocityElevated,
		},
		breakingKeywords: toSet(defaultBreakingKeywords()),
		elevatedKeywords: toSet(defaultElevatedKeywords()),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Assess classifies every candidate in place. Four independent signals are
// combined by taking the maximum severity, so no single weak signal can
// suppress a genuinely urgent story.
func (d *Detector) Assess(pool []*model.Candidate) {
	now := d.now()
	velocity := d.topicVelocity(pool, now)
	sources := topicSourceCounts(pool)

	for _, c := range pool {
		c.Urgency = model.MaxUrgency(
			d.keywordUrgency(c),
			d.velocityUrgency(velocity[c.Topic]),
			d.sourceCountUrgency(sources[c.Topic]),
			d.recencyUrgency(c, now),
		)
		c.Lifecycle = d.inferLifecycle(c, velocity[c.Topic])
	}
}

// topicVelocity computes, per topic, the fraction of the topic's items that
// appeared within the velocity window. Placeholder items carry synthetic
// timestamps and are excluded.
func (d *Detector) topicVelocity(pool []*model.Candidate, now time.Time) map[string]float64 {
	recent := make(map[string]int)
	total := make(map[string]int)
	for _, c := range pool {
		if strings.Contains(c.URL, placeholderHost) {
			continue
		}
		total[c.Topic]++
		if now.Sub(c.CreatedAt) <= d.velocityWindow {
			recent[c.Topic]++
		}
	}

	velocity := make(map[string]float64, len(total))
	for topic, n := range total {
		velocity[topic] = float64(recent[topic]) / float64(n)
	}
	return velocity
}

func topicSourceCounts(pool []*model.Candidate) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, c := range pool {
		if seen[c.Topic] == nil {
			seen[c.Topic] = make(map[string]struct{})
		}
		seen[c.Topic][c.Source] = struct{}{}
	}
	counts := make(map[string]int, len(seen))
	for topic, s := range seen {
		counts[topic] = len(s)
	}
	return counts
}

func (d *Detector) keywordUrgency(c *model.Candidate) model.Urgency {
	words := toSet(strings.Fields(strings.ToLower(c.Title + " " + c.Summary)))
	if intersects(words, d.breakingKeywords) {
		return model.UrgencyBreaking
	}
	if intersects(words, d.elevatedKeywords) {
		return model.UrgencyElevated
	}
	return model.UrgencyRoutine
}

func (d *Detector) velocityUrgency(v float64) model.Urgency {
	switch {
	case v >= d.velocity.Critical:
		return model.UrgencyCritical
	case v >= d.velocity.Breaking:
		return model.UrgencyBreaking
	case v >= d.velocity.Elevated:
		return model.UrgencyElevated
	default:
		return model.UrgencyRoutine
	}
}

func (d *Detector) sourceCountUrgency(distinctSources int) model.Urgency {
	switch {
	case distinctSources >= d.sourceThreshold+breakingSourceExtraMargin:
		return model.UrgencyBreaking
	case distinctSources >= d.sourceThreshold:
		return model.UrgencyElevated
	default:
		return model.UrgencyRoutine
	}
}

func (d *Detector) recencyUrgency(c *model.Candidate, now time.Time) model.Urgency {
	if now.Sub(c.CreatedAt) <= d.recencyWindow {
		return model.UrgencyElevated
	}
	return model.UrgencyRoutine
}

func (d *Detector) inferLifecycle(c *model.Candidate, topicVelocity float64) model.Lifecycle {
	switch {
	case c.Urgency == model.UrgencyCritical || c.Urgency == model.UrgencyBreaking:
		return model.LifecycleBreaking
	case topicVelocity >= d.velocity.Elevated:
		return model.LifecycleDeveloping
	case c.NoveltyScore < d.waningNovelty:
		return model.LifecycleWaning
	default:
		return model.LifecycleOngoing
	}
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}
