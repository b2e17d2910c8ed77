package testfeed

import (
	"context"
	"fmt"
	"log"
)

// verifyResults checks the briefing and backfill against the service's
// published guarantees.
func verifyResults(ctx context.Context, config *Config, briefing *Briefing, backfill []BriefingItem, trends []Trend) error {
	log.Printf("verifying briefing invariants...")

	if len(briefing.Items) > config.MaxItems {
		return fmt.Errorf("briefing returned %d items, cap was %d", len(briefing.Items), config.MaxItems)
	}

	itemIDs := make(map[string]struct{}, len(briefing.Items))
	for _, item := range briefing.Items {
		if item.CredibilityScore < 0 || item.CredibilityScore > 1 {
			return fmt.Errorf("candidate %s has credibility score %f outside [0,1]",
				item.Candidate.ID, item.CredibilityScore)
		}
		if _, dup := itemIDs[item.Candidate.ID]; dup {
			return fmt.Errorf("candidate %s appears twice in briefing", item.Candidate.ID)
		}
		itemIDs[item.Candidate.ID] = struct{}{}
	}

	// Every thread member must be a briefing item, and every member belongs
	// to exactly one thread.
	threadMembers := make(map[string]string)
	for _, thread := range briefing.Threads {
		for _, member := range thread.Members {
			if _, ok := itemIDs[member.ID]; !ok {
				return fmt.Errorf("thread %s references candidate %s outside the briefing",
					thread.ThreadID, member.ID)
			}
			if prior, ok := threadMembers[member.ID]; ok {
				return fmt.Errorf("candidate %s is in threads %s and %s", member.ID, prior, thread.ThreadID)
			}
			threadMembers[member.ID] = thread.ThreadID
		}
	}

	// Backfill must not repeat briefing items.
	for _, item := range backfill {
		if _, dup := itemIDs[item.Candidate.ID]; dup {
			return fmt.Errorf("backfill repeated briefing candidate %s", item.Candidate.ID)
		}
	}

	// Emerging flags must agree with the anomaly threshold ordering.
	for _, trend := range trends {
		if trend.IsEmerging && trend.AnomalyScore < 1.0 {
			return fmt.Errorf("topic %s flagged emerging with anomaly %f", trend.Topic, trend.AnomalyScore)
		}
	}

	log.Printf("verification passed: %d items, %d threads, %d backfill, %d trends",
		len(briefing.Items), len(briefing.Threads), len(backfill), len(trends))
	return nil
}
