// Package georisk maintains a per-region risk index driven by candidate
// flow, urgency, and escalation language.
package georisk

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

const (
	defaultPrior      = 0.3
	defaultMaxDrivers = 5

	defaultBaseWeight           = 0.4
	defaultEscalationPerKeyword = 0.03
	defaultVolumePerItem        = 0.02
	defaultVolumeCap            = 0.15

	defaultUrgencyFactorCritical = 0.3
	defaultUrgencyFactorBreaking = 0.2
	defaultUrgencyFactorElevated = 0.1

	multiSourceMinOutlets = 3
	topDriverItems        = 3
	driverTitleLen        = 60
)

// DefaultRegions maps region names to the keywords that attribute an item
// to them. Matching is substring-based over title and summary.
func DefaultRegions() map[string][]string {
	return map[string][]string{
		"eastern_europe": {"ukraine", "russia", "belarus", "moldova", "kyiv", "moscow"},
		"middle_east":    {"israel", "gaza", "iran", "syria", "lebanon", "yemen", "saudi"},
		"east_asia":      {"china", "taiwan", "japan", "korea", "beijing", "taipei"},
		"south_asia":     {"india", "pakistan", "kashmir", "bangladesh", "delhi"},
		"western_europe": {"france", "germany", "britain", "nato", "brussels", "london"},
		"north_america":  {"united states", "washington", "canada", "mexico", "congress"},
		"latin_america":  {"brazil", "argentina", "venezuela", "colombia", "chile"},
		"africa":         {"nigeria", "ethiopia", "sudan", "sahel", "kenya", "congo"},
		"southeast_asia": {"indonesia", "philippines", "vietnam", "myanmar", "thailand"},
	}
}

// RegionGlobal collects items that match no configured region.
const RegionGlobal = "global"

func defaultEscalationKeywords() []string {
	return []string{
		"invasion", "attack", "war", "strike", "mobilization", "offensive",
		"sanctions", "blockade", "coup", "escalation", "missile", "troops",
	}
}

func defaultDeescalationKeywords() []string {
	return []string{
		"ceasefire", "truce", "peace", "agreement", "negotiation", "treaty",
		"withdrawal", "de-escalation", "talks", "accord",
	}
}

// RiskWeights are the scoring weights blended into a region's risk level.
type RiskWeights struct {
	Base                 float64
	EscalationPerKeyword float64
	VolumePerItem        float64
	VolumeCap            float64
}

// UrgencyFactors are the additive risk contributions per peak urgency.
type UrgencyFactors struct {
	Critical float64
	Breaking float64
	Elevated float64
}

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithRegions replaces the region keyword map.
func WithRegions(regions map[string][]string) Option {
	return func(i *Index) {
		if len(regions) > 0 {
			i.regions = regions
		}
	}
}

// WithPrior sets the resting risk level every region decays toward.
func WithPrior(p float64) Option {
	return func(i *Index) {
		if p > 0 && p < 1 {
			i.prior = p
		}
	}
}

// WithEscalationKeywords replaces the escalation and de-escalation keyword
// sets. Empty slices keep the defaults.
func WithEscalationKeywords(escalation, deescalation []string) Option {
	return func(i *Index) {
		if len(escalation) > 0 {
			i.escalation = keywordSet(escalation)
		}
		if len(deescalation) > 0 {
			i.deescalation = keywordSet(deescalation)
		}
	}
}

// WithRiskWeights overrides the scoring weight set. Non-positive fields keep
// their defaults.
func WithRiskWeights(w RiskWeights) Option {
	return func(i *Index) {
		if w.Base > 0 {
			i.weights.Base = w.Base
		}
		if w.EscalationPerKeyword > 0 {
			i.weights.EscalationPerKeyword = w.EscalationPerKeyword
		}
		if w.VolumePerItem > 0 {
			i.weights.VolumePerItem = w.VolumePerItem
		}
		if w.VolumeCap > 0 {
			i.weights.VolumeCap = w.VolumeCap
		}
	}
}

// WithUrgencyFactors overrides the urgency risk contributions. Non-positive
// fields keep their defaults.
func WithUrgencyFactors(f UrgencyFactors) Option {
	return func(i *Index) {
		if f.Critical > 0 {
			i.urgencyFactors.Critical = f.Critical
		}
		if f.Breaking > 0 {
			i.urgencyFactors.Breaking = f.Breaking
		}
		if f.Elevated > 0 {
			i.urgencyFactors.Elevated = f.Elevated
		}
	}
}

// WithMaxDrivers caps the driver lines per entry.
func WithMaxDrivers(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.maxDrivers = n
		}
	}
}

// WithScoreFunc overrides the composite score used for the risk blend.
func WithScoreFunc(fn model.ScoreFunc) Option {
	return func(i *Index) {
		if fn != nil {
			i.score = fn
		}
	}
}

// Index tracks region risk across assessments. Safe for concurrent use.
type Index struct {
	mu sync.Mutex

	regions        map[string][]string
	prior          float64
	escalation     map[string]struct{}
	deescalation   map[string]struct{}
	weights        RiskWeights
	urgencyFactors UrgencyFactors
	maxDrivers     int
	score          model.ScoreFunc

	// previous risk per region, for trend deltas
	history map[string]float64
}

// NewIndex creates a geo-risk index with configuration options.
func NewIndex(opts ...Option) *Index {
	i := &Index{
		regions:      DefaultRegions(),
		prior:        defaultPrior,
		escalation:   keywordSet(defaultEscalationKeywords()),
		deescalation: keywordSet(defaultDeescalationKeywords()),
		weights: RiskWeights{
			Base:                 defaultBaseWeight,
			EscalationPerKeyword: defaultEscalationPerKeyword,
			VolumePerItem:        defaultVolumePerItem,
			VolumeCap:            defaultVolumeCap,
		},
		urgencyFactors: UrgencyFactors{
			Critical: defaultUrgencyFactorCritical,
			Breaking: defaultUrgencyFactorBreaking,
			Elevated: defaultUrgencyFactorElevated,
		},
		maxDrivers: defaultMaxDrivers,
		score:      model.DefaultScore,
		history:    make(map[string]float64),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Assess attributes each candidate to regions, computes a risk level per
// touched region, and returns entries sorted by risk descending. Candidates
// get their Regions field filled in place. Untouched regions keep their
// last level in history but do not appear in the result.
func (i *Index) Assess(pool []*model.Candidate) []model.GeoRiskEntry {
	i.mu.Lock()
	defer i.mu.Unlock()

	byRegion := make(map[string][]*model.Candidate)
	for _, c := range pool {
		regions := i.matchRegions(c)
		c.Regions = regions
		for _, r := range regions {
			byRegion[r] = append(byRegion[r], c)
		}
	}

	entries := make([]model.GeoRiskEntry, 0, len(byRegion))
	for region, items := range byRegion {
		risk := i.assessRegion(items)
		prev, seen := i.history[region]
		if !seen {
			prev = i.prior
		}
		i.history[region] = risk

		entries = append(entries, model.GeoRiskEntry{
			Region:          region,
			RiskLevel:       risk,
			PreviousLevel:   prev,
			EscalationDelta: risk - prev,
			Drivers:         i.buildDrivers(items),
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].RiskLevel != entries[b].RiskLevel {
			return entries[a].RiskLevel > entries[b].RiskLevel
		}
		return entries[a].Region < entries[b].Region
	})
	return entries
}

func (i *Index) matchRegions(c *model.Candidate) []string {
	text := strings.ToLower(c.Title + " " + c.Summary)
	matched := make([]string, 0, 2)
	names := make([]string, 0, len(i.regions))
	for name := range i.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, kw := range i.regions[name] {
			if strings.Contains(text, kw) {
				matched = append(matched, name)
				break
			}
		}
	}
	if len(matched) == 0 {
		matched = append(matched, RegionGlobal)
	}
	return matched
}

// assessRegion blends average composite score, peak urgency, net escalation
// language, and item volume into a [0,1] risk level. Every keyword hit
// counts, so a three-keyword item contributes three times the per-keyword
// step.
func (i *Index) assessRegion(items []*model.Candidate) float64 {
	sum := 0.0
	urgency := model.UrgencyRoutine
	net := 0

	for _, c := range items {
		sum += i.score(*c)
		urgency = model.MaxUrgency(urgency, c.Urgency)
		words := wordSet(c)
		net += countHits(words, i.escalation) - countHits(words, i.deescalation)
	}

	risk := i.weights.Base*(sum/float64(len(items))) +
		i.urgencyFactor(urgency) +
		i.weights.EscalationPerKeyword*float64(net) +
		math.Min(i.weights.VolumeCap, i.weights.VolumePerItem*float64(len(items)))

	return clamp01(risk)
}

// buildDrivers explains a region's reading: a multi-source coverage line
// when enough distinct outlets contribute, then the top-scoring items each
// labeled by the keyword class their text carries.
func (i *Index) buildDrivers(items []*model.Candidate) []string {
	drivers := make([]string, 0, i.maxDrivers)

	sources := make(map[string]struct{}, len(items))
	for _, c := range items {
		sources[c.Source] = struct{}{}
	}
	if len(sources) >= multiSourceMinOutlets {
		drivers = append(drivers, fmt.Sprintf("Multi-source coverage (%d outlets)", len(sources)))
	}

	top := make([]*model.Candidate, len(items))
	copy(top, items)
	sort.SliceStable(top, func(a, b int) bool {
		return i.score(*top[a]) > i.score(*top[b])
	})
	if len(top) > topDriverItems {
		top = top[:topDriverItems]
	}

	for _, c := range top {
		words := wordSet(c)
		title := truncate(c.Title, driverTitleLen)
		switch {
		case countHits(words, i.escalation) > 0:
			drivers = append(drivers, "Escalation signal: "+title)
		case countHits(words, i.deescalation) > 0:
			drivers = append(drivers, "De-escalation signal: "+title)
		default:
			drivers = append(drivers, "Activity: "+title)
		}
	}

	if len(drivers) > i.maxDrivers {
		drivers = drivers[:i.maxDrivers]
	}
	return drivers
}

func (i *Index) urgencyFactor(u model.Urgency) float64 {
	switch u {
	case model.UrgencyCritical:
		return i.urgencyFactors.Critical
	case model.UrgencyBreaking:
		return i.urgencyFactors.Breaking
	case model.UrgencyElevated:
		return i.urgencyFactors.Elevated
	default:
		return 0
	}
}

// Snapshot returns the last known risk level per region.
func (i *Index) Snapshot() map[string]float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make(map[string]float64, len(i.history))
	for region, risk := range i.history {
		out[region] = risk
	}
	return out
}

func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return set
}

func wordSet(c *model.Candidate) map[string]struct{} {
	words := strings.Fields(strings.ToLower(c.Title + " " + c.Summary))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func countHits(words, keywords map[string]struct{}) int {
	n := 0
	for kw := range keywords {
		if _, ok := words[kw]; ok {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
