// Package entities extracts named entities from candidate text and tracks
// co-occurrence connections between them.
package entities

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

const (
	defaultMaxEntities    = 50
	defaultMaxConnections = 10
)

// namePattern matches capitalized word runs, the rough shape of proper
// nouns in headline text.
var namePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

func knownLeaders() []string {
	return []string{
		"Biden", "Putin", "Xi Jinping", "Zelensky", "Macron", "Scholz",
		"Modi", "Netanyahu", "Erdogan", "Trump", "Starmer", "Powell",
	}
}

func knownOrganizations() []string {
	return []string{
		"Federal Reserve", "United Nations", "European Union", "NATO",
		"World Bank", "IMF", "OPEC", "Pentagon", "Congress", "Kremlin",
		"White House", "ECB", "WHO",
	}
}

func knownCountries() []string {
	return []string{
		"United States", "China", "Russia", "Ukraine", "Israel", "Iran",
		"India", "Pakistan", "Taiwan", "Germany", "France", "Britain",
		"Japan", "Brazil", "Turkey", "Saudi Arabia", "North Korea",
		"South Korea",
	}
}

// noiseWords are capitalized sentence starters and headline filler that the
// name pattern picks up but that carry no entity meaning.
func noiseWords() []string {
	return []string{
		"The", "This", "That", "New", "Breaking", "Update", "Report",
		"Sources", "Officials", "Exclusive", "Analysis", "Opinion",
		"Today", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
		"Saturday", "Sunday", "January", "February", "March", "April",
		"May", "June", "July", "August", "September", "October",
		"November", "December",
	}
}

// EntityKind classifies an extracted entity.
type EntityKind string

const (
	KindLeader       EntityKind = "leader"
	KindOrganization EntityKind = "organization"
	KindCountry      EntityKind = "country"
	KindOther        EntityKind = "other"
)

// Entity is a tracked named entity with its mention count and the entities
// it co-occurs with.
type Entity struct {
	Name        string     `json:"name"`
	Kind        EntityKind `json:"kind"`
	Mentions    int        `json:"mentions"`
	Connections []string   `json:"connections,omitempty"`
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithMaxEntities bounds the number of tracked entities.
func WithMaxEntities(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxEntities = n
		}
	}
}

// WithMaxConnections bounds the co-occurrence list per entity.
func WithMaxConnections(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxConnections = n
		}
	}
}

// Extractor accumulates entity mentions and connections across candidate
// batches. Safe for concurrent use.
type Extractor struct {
	mu sync.Mutex

	maxEntities    int
	maxConnections int

	leaders       map[string]struct{}
	organizations map[string]struct{}
	countries     map[string]struct{}
	noise         map[string]struct{}

	mentions    map[string]int
	kinds       map[string]EntityKind
	connections map[string]map[string]struct{}
}

// NewExtractor creates an entity extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxEntities:    defaultMaxEntities,
		maxConnections: defaultMaxConnections,
		leaders:        toSet(knownLeaders()),
		organizations:  toSet(knownOrganizations()),
		countries:      toSet(knownCountries()),
		noise:          toSet(noiseWords()),
		mentions:       make(map[string]int),
		kinds:          make(map[string]EntityKind),
		connections:    make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract pulls entities from each candidate's title and summary, counts
// mentions, and links entities that appear in the same item. Returns the
// entities found in this batch.
func (e *Extractor) Extract(pool []*model.Candidate) []Entity {
	e.mu.Lock()
	defer e.mu.Unlock()

	batch := make(map[string]struct{})
	for _, c := range pool {
		found := e.entitiesIn(c.Title + ". " + c.Summary)
		for _, name := range found {
			e.recordLocked(name)
			batch[name] = struct{}{}
		}
		e.connectLocked(found)
	}

	names := make([]string, 0, len(batch))
	for name := range batch {
		if _, tracked := e.mentions[name]; tracked {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]Entity, 0, len(names))
	for _, name := range names {
		out = append(out, e.entityLocked(name))
	}
	return out
}

// entitiesIn returns the distinct entities found in one text, known names
// first so multi-word matches like "Federal Reserve" win over their parts.
func (e *Extractor) entitiesIn(text string) []string {
	seen := make(map[string]struct{})
	found := make([]string, 0, 4)

	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		found = append(found, name)
	}

	for name := range e.leaders {
		if strings.Contains(text, name) {
			add(name)
		}
	}
	for name := range e.organizations {
		if strings.Contains(text, name) {
			add(name)
		}
	}
	for name := range e.countries {
		if strings.Contains(text, name) {
			add(name)
		}
	}

	for _, match := range namePattern.FindAllString(text, -1) {
		if e.isNoise(match) || e.coveredByKnown(match, seen) {
			continue
		}
		add(match)
	}

	sort.Strings(found)
	return found
}

// isNoise reports whether a pattern match is headline filler. A multi-word
// run counts as noise only when every word is a noise word.
func (e *Extractor) isNoise(match string) bool {
	words := strings.Fields(match)
	allNoise := true
	for _, w := range words {
		if _, ok := e.noise[w]; !ok {
			allNoise = false
			break
		}
	}
	if allNoise {
		return true
	}
	// single short capitalized words are almost always sentence starts
	if len(words) == 1 && len(match) < 4 {
		return true
	}
	return false
}

// coveredByKnown drops pattern matches that are substrings of an already
// found known entity, e.g. "Federal" after "Federal Reserve".
func (e *Extractor) coveredByKnown(match string, seen map[string]struct{}) bool {
	for name := range seen {
		if strings.Contains(name, match) {
			return true
		}
	}
	return false
}

func (e *Extractor) recordLocked(name string) {
	if _, tracked := e.mentions[name]; !tracked {
		if len(e.mentions) >= e.maxEntities {
			e.evictLeastMentionedLocked()
		}
		e.kinds[name] = e.classify(name)
	}
	e.mentions[name]++
}

func (e *Extractor) classify(name string) EntityKind {
	if _, ok := e.leaders[name]; ok {
		return KindLeader
	}
	if _, ok := e.organizations[name]; ok {
		return KindOrganization
	}
	if _, ok := e.countries[name]; ok {
		return KindCountry
	}
	return KindOther
}

func (e *Extractor) connectLocked(found []string) {
	for _, a := range found {
		for _, b := range found {
			if a == b {
				continue
			}
			if e.connections[a] == nil {
				e.connections[a] = make(map[string]struct{})
			}
			if len(e.connections[a]) < e.maxConnections {
				e.connections[a][b] = struct{}{}
			}
		}
	}
}

// evictLeastMentionedLocked drops the rarest entity, known-kind entities
// last.
func (e *Extractor) evictLeastMentionedLocked() {
	victim := ""
	lowest := 0
	for name, count := range e.mentions {
		if e.kinds[name] != KindOther {
			continue
		}
		if victim == "" || count < lowest || (count == lowest && name < victim) {
			victim = name
			lowest = count
		}
	}
	if victim == "" {
		for name, count := range e.mentions {
			if victim == "" || count < lowest || (count == lowest && name < victim) {
				victim = name
				lowest = count
			}
		}
	}
	delete(e.mentions, victim)
	delete(e.kinds, victim)
	delete(e.connections, victim)
	for _, conns := range e.connections {
		delete(conns, victim)
	}
}

func (e *Extractor) entityLocked(name string) Entity {
	conns := make([]string, 0, len(e.connections[name]))
	for c := range e.connections[name] {
		conns = append(conns, c)
	}
	sort.Strings(conns)
	return Entity{
		Name:        name,
		Kind:        e.kinds[name],
		Mentions:    e.mentions[name],
		Connections: conns,
	}
}

// Snapshot returns all tracked entities sorted by mention count descending.
func (e *Extractor) Snapshot() []Entity {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Entity, 0, len(e.mentions))
	for name := range e.mentions {
		out = append(out, e.entityLocked(name))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Size returns the number of tracked entities.
func (e *Extractor) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.mentions)
}

func toSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
