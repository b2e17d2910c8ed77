package clustering

import (
	"fmt"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

const (
	singletonSpread = 0.1
	bandPadding     = 0.1
)

// confidenceBand derives a forecast-style band from the member composite
// scores. Mid is the mean, the spread widens with member disagreement, and
// the assumptions record what the band rests on.
func (cl *Clusterer) confidenceBand(members []*model.Candidate, sourceCount int) model.ConfidenceBand {
	low, high := cl.score(*members[0]), cl.score(*members[0])
	sum := 0.0
	corroborated := false
	for _, m := range members {
		s := cl.score(*m)
		sum += s
		if s < low {
			low = s
		}
		if s > high {
			high = s
		}
		if len(m.CorroboratedBy) > 0 {
			corroborated = true
		}
	}

	mid := sum / float64(len(members))
	spread := high - low
	if len(members) == 1 {
		spread = singletonSpread
	}

	assumptions := make([]string, 0, 2)
	if sourceCount > 1 {
		assumptions = append(assumptions, fmt.Sprintf("Corroborated across %d sources", sourceCount))
	} else {
		assumptions = append(assumptions, "Single-source reporting")
	}
	if corroborated {
		assumptions = append(assumptions, "Cross-reference confirmation detected")
	}

	return model.ConfidenceBand{
		Low:            clamp01(mid - (spread + bandPadding)),
		Mid:            mid,
		High:           clamp01(mid + (spread + bandPadding)),
		KeyAssumptions: assumptions,
	}
}
