// Package corroboration finds candidates describing the same underlying
// event across sources and marks cross-references. Corroboration is a proxy
// for "multiple independent sources confirm this story", not verification.
package corroboration

import (
	"sort"
	"strings"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// Default detector configuration constants.
const (
	defaultJaccardThreshold       = 0.25
	defaultTopicBreadthMinSources = 3
	topicBreadthFallbackSources   = 2
	placeholderHost               = "example.com"
)

// SourcePair names two sources that corroborated each other during a pass.
// A is lexicographically smaller than B.
type SourcePair struct {
	A string
	B string
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithJaccardThreshold sets the significant-word overlap threshold for the
// similarity pass.
func WithJaccardThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 {
			d.jaccardThreshold = t
		}
	}
}

// WithTopicBreadthMinSources sets how many distinct sources a topic needs
// before the breadth fallback fires.
func WithTopicBreadthMinSources(n int) Option {
	return func(d *Detector) {
		if n > 1 {
			d.topicBreadthMin = n
		}
	}
}

// Detector marks cross-source corroboration on a candidate pool.
type Detector struct {
	jaccardThreshold float64
	topicBreadthMin  int
}

// NewDetector creates a corroboration detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		jaccardThreshold: defaultJaccardThreshold,
		topicBreadthMin:  defaultTopicBreadthMinSources,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs three passes over the pool, mutating CorroboratedBy in place,
// and returns the distinct source pairs linked by the first two passes.
//
//  1. Title-key clusters: identical normalized titles across >=2 sources.
//     Catches verbatim republishing.
//  2. Significant-word overlap within a topic: Jaccard over title+summary
//     words, cross-source only. Catches paraphrased coverage of the same
//     event without pairwise comparison across topics.
//  3. Topic breadth: topics carried by enough distinct sources lend weak
//     topic-level corroboration to items the first two passes missed.
func (d *Detector) Detect(pool []*model.Candidate) []SourcePair {
	pairs := make(map[SourcePair]struct{})

	d.titleClusterPass(pool, pairs)
	d.similarityPass(pool, pairs)
	d.topicBreadthPass(pool)

	out := make([]SourcePair, 0, len(pairs))
	for p := range pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

func (d *Detector) titleClusterPass(pool []*model.Candidate, pairs map[SourcePair]struct{}) {
	groups := make(map[string][]*model.Candidate)
	for _, c := range pool {
		key := titleKey(c.Title)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], c)
	}

	for _, group := range groups {
		sources := distinctSources(group)
		if len(sources) < 2 {
			continue
		}
		for _, c := range group {
			others := make([]string, 0, len(sources)-1)
			for _, s := range sources {
				if s != c.Source {
					others = append(others, s)
				}
			}
			addCorroboration(c, others...)
		}
		recordPairs(pairs, sources)
	}
}

func (d *Detector) similarityPass(pool []*model.Candidate, pairs map[SourcePair]struct{}) {
	// Pre-extract word sets and group by topic: items in different topics
	// cannot corroborate, which keeps the pairwise scan bounded.
	words := make(map[string]map[string]struct{}, len(pool))
	byTopic := make(map[string][]*model.Candidate)
	for _, c := range pool {
		if strings.Contains(c.URL, placeholderHost) {
			// Synthetic placeholders share boilerplate text and would
			// corroborate each other.
			words[c.ID] = nil
		} else {
			words[c.ID] = significantWords(c.Title + " " + c.Summary)
		}
		byTopic[c.Topic] = append(byTopic[c.Topic], c)
	}

	for _, group := range byTopic {
		for i, ci := range group {
			wi := words[ci.ID]
			if len(wi) == 0 {
				continue
			}
			for _, cj := range group[i+1:] {
				if ci.Source == cj.Source {
					continue
				}
				wj := words[cj.ID]
				if len(wj) == 0 {
					continue
				}
				if jaccard(wi, wj) >= d.jaccardThreshold {
					addCorroboration(ci, cj.Source)
					addCorroboration(cj, ci.Source)
					recordPairs(pairs, []string{ci.Source, cj.Source})
				}
			}
		}
	}
}

func (d *Detector) topicBreadthPass(pool []*model.Candidate) {
	topicSources := make(map[string][]string)
	for _, c := range pool {
		if !containsString(topicSources[c.Topic], c.Source) {
			topicSources[c.Topic] = append(topicSources[c.Topic], c.Source)
		}
	}

	for _, c := range pool {
		if len(c.CorroboratedBy) > 0 {
			continue
		}
		sources := topicSources[c.Topic]
		if len(sources) < d.topicBreadthMin {
			continue
		}
		others := make([]string, 0, topicBreadthFallbackSources)
		for _, s := range sources {
			if s == c.Source {
				continue
			}
			others = append(others, s)
			if len(others) == topicBreadthFallbackSources {
				break
			}
		}
		addCorroboration(c, others...)
	}
}

// addCorroboration unions sources into c.CorroboratedBy, keeping it sorted
// and free of duplicates and self-references.
func addCorroboration(c *model.Candidate, sources ...string) {
	changed := false
	for _, s := range sources {
		if s == "" || s == c.Source || containsString(c.CorroboratedBy, s) {
			continue
		}
		c.CorroboratedBy = append(c.CorroboratedBy, s)
		changed = true
	}
	if changed {
		sort.Strings(c.CorroboratedBy)
	}
}

func recordPairs(pairs map[SourcePair]struct{}, sources []string) {
	for i, a := range sources {
		for _, b := range sources[i+1:] {
			if a == b {
				continue
			}
			p := SourcePair{A: a, B: b}
			if p.A > p.B {
				p.A, p.B = p.B, p.A
			}
			pairs[p] = struct{}{}
		}
	}
}

func distinctSources(group []*model.Candidate) []string {
	var out []string
	for _, c := range group {
		if !containsString(out, c.Source) {
			out = append(out, c.Source)
		}
	}
	sort.Strings(out)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
