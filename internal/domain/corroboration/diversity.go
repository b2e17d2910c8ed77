package corroboration

import (
	"sort"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// DefaultMaxPerSource caps per-source representation in ranked output.
const DefaultMaxPerSource = 3

// EnforceDiversity prevents any single source from dominating a ranked list.
// Candidates are sorted by score descending, then greedily admitted while
// their source stays under maxPerSource; overflow items are demoted to the
// tail (still in score order) rather than dropped, so the output is always a
// permutation of the input and backfill stays possible when few sources are
// available.
func EnforceDiversity(pool []*model.Candidate, maxPerSource int, score model.ScoreFunc) []*model.Candidate {
	if maxPerSource < 1 {
		maxPerSource = DefaultMaxPerSource
	}
	if score == nil {
		score = model.DefaultScore
	}

	ranked := make([]*model.Candidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(*ranked[i]) > score(*ranked[j])
	})

	counts := make(map[string]int)
	diverse := make([]*model.Candidate, 0, len(ranked))
	var overflow []*model.Candidate
	for _, c := range ranked {
		if counts[c.Source] < maxPerSource {
			diverse = append(diverse, c)
			counts[c.Source]++
		} else {
			overflow = append(overflow, c)
		}
	}

	return append(diverse, overflow...)
}

// DiversePrefixLen returns how many leading items of an EnforceDiversity
// result respect the per-source cap. Callers selecting top-N should prefer
// staying inside this prefix.
func DiversePrefixLen(pool []*model.Candidate, maxPerSource int) int {
	if maxPerSource < 1 {
		maxPerSource = DefaultMaxPerSource
	}
	counts := make(map[string]int)
	n := 0
	for _, c := range pool {
		if counts[c.Source] >= maxPerSource {
			break
		}
		counts[c.Source]++
		n++
	}
	return n
}
