// Package credibility maintains per-source trust state and blends it into
// candidate scores.
package credibility

import (
	"sort"
)

// TierUnknown is the tier assigned to sources absent from every tier table.
const TierUnknown = "unknown"

// Tier describes one reliability tier.
type Tier struct {
	Sources         []string
	BaseReliability float64
}

// TierTable is the unified source tier registry: tier membership, base
// reliability, and bias profiles. Built once at construction, read-only after.
type TierTable struct {
	sourceToTier map[string]string
	tierBase     map[string]float64
	tierSources  map[string][]string
	unknownBase  float64
	biasProfiles map[string]string
}

// DefaultTiers returns the fallback tier table used when config omits one.
func DefaultTiers() map[string]Tier {
	return map[string]Tier{
		"tier_1":        {Sources: []string{"reuters", "ap", "bbc", "guardian", "ft"}, BaseReliability: 0.85},
		"tier_1b":       {Sources: []string{"aljazeera"}, BaseReliability: 0.78},
		"tier_academic": {Sources: []string{"arxiv"}, BaseReliability: 0.72},
		"tier_2":        {Sources: []string{"x", "reddit", "web", "hackernews", "gdelt"}, BaseReliability: 0.55},
	}
}

// DefaultBiasProfiles returns the fallback bias-profile map.
func DefaultBiasProfiles() map[string]string {
	return map[string]string{
		"reuters": "center", "ap": "center", "bbc": "center-left",
		"guardian": "left-leaning", "ft": "center-right",
		"aljazeera": "center", "x": "variable", "reddit": "community-driven",
		"web": "unverified", "arxiv": "academic", "hackernews": "tech-community",
		"gdelt": "event-based",
	}
}

// NewTierTable builds a registry from tier definitions. Empty or nil input
// falls back to the defaults.
func NewTierTable(tiers map[string]Tier, biasProfiles map[string]string, unknownBase float64) *TierTable {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	if len(biasProfiles) == 0 {
		biasProfiles = DefaultBiasProfiles()
	}
	if unknownBase <= 0 {
		unknownBase = 0.50
	}

	t := &TierTable{
		sourceToTier: make(map[string]string),
		tierBase:     make(map[string]float64),
		tierSources:  make(map[string][]string),
		unknownBase:  unknownBase,
		biasProfiles: biasProfiles,
	}
	for name, tier := range tiers {
		t.tierBase[name] = tier.BaseReliability
		members := make([]string, len(tier.Sources))
		copy(members, tier.Sources)
		sort.Strings(members)
		t.tierSources[name] = members
		for _, src := range tier.Sources {
			t.sourceToTier[src] = name
		}
	}
	return t
}

// TierName returns the tier for a source, or TierUnknown.
func (t *TierTable) TierName(sourceID string) string {
	if name, ok := t.sourceToTier[sourceID]; ok {
		return name
	}
	return TierUnknown
}

// BaseReliability returns the base reliability score for a source.
func (t *TierTable) BaseReliability(sourceID string) float64 {
	if name, ok := t.sourceToTier[sourceID]; ok {
		return t.tierBase[name]
	}
	return t.unknownBase
}

// Bias returns the bias rating for a source, or "unrated".
func (t *TierTable) Bias(sourceID string) string {
	if b, ok := t.biasProfiles[sourceID]; ok {
		return b
	}
	return "unrated"
}

// IsKnown reports whether a source belongs to any tier.
func (t *TierTable) IsKnown(sourceID string) bool {
	_, ok := t.sourceToTier[sourceID]
	return ok
}

// SourcesInTier returns the sorted members of a tier.
func (t *TierTable) SourcesInTier(name string) []string {
	return t.tierSources[name]
}

// AllTiers returns tier name -> sorted member sources.
func (t *TierTable) AllTiers() map[string][]string {
	out := make(map[string][]string, len(t.tierSources))
	for name, sources := range t.tierSources {
		out[name] = sources
	}
	return out
}
