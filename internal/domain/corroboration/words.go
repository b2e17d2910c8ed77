package corroboration

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Words shorter than this carry no matching signal in titles.
const minTitleWordLen = 4

// Title keys hash at most this many significant words.
const maxTitleKeyWords = 6

var wordPattern = regexp.MustCompile(`[a-z]{3,}`)

// stopWords are filtered from significant-word extraction. The tail entries
// suppress false matches between synthetic placeholder items.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {},
	"all": {}, "can": {}, "has": {}, "her": {}, "was": {}, "one": {}, "our": {},
	"out": {}, "his": {}, "its": {}, "from": {}, "they": {}, "been": {},
	"have": {}, "this": {}, "that": {}, "with": {}, "will": {}, "each": {},
	"make": {}, "like": {}, "into": {}, "over": {}, "such": {}, "than": {},
	"them": {}, "some": {}, "what": {}, "when": {}, "who": {}, "how": {},
	"about": {}, "more": {}, "also": {}, "after": {}, "says": {}, "said": {},
	"new": {}, "could": {}, "would": {}, "most": {}, "just": {}, "being": {},
	"other": {}, "very": {}, "still": {}, "should": {}, "here": {},
	"simulated": {}, "signal": {}, "candidate": {}, "insight": {},
	"generated": {}, "placeholder": {},
}

// titleKey normalizes a title into a stable cluster key: lowercase, keep
// words longer than three characters, take the first six, hash them.
// Verbatim republishing lands on the same key; paraphrasing does not.
func titleKey(title string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) < minTitleWordLen {
			continue
		}
		kept = append(kept, w)
		if len(kept) == maxTitleKeyWords {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(kept, " ")))
	return hex.EncodeToString(sum[:8])
}

// significantWords extracts lowercased content words of three or more letters,
// minus stop words.
func significantWords(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// jaccard computes set overlap in [0,1]. Empty sets never match.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
