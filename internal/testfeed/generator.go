package testfeed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-intel/kestrel/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Signal distribution ranges by source class.
const (
	wireEvidenceMin    = 0.65
	wireEvidenceRange  = 0.3
	socialEvidenceMin  = 0.2
	socialEvidenceRange = 0.4
	noveltyMin         = 0.3
	noveltyRange       = 0.7
	fitMin             = 0.2
	fitRange           = 0.6
	predictionMin      = 0.1
	predictionRange    = 0.7
	burstTopicShare    = 5 // one in N candidates joins the burst topic
)

var wireSources = []string{"reuters", "ap", "bbc", "guardian", "ft", "aljazeera"}

var socialSources = []string{"x", "reddit", "web", "hackernews", "gdelt", "arxiv"}

var topics = []string{"markets", "conflict", "politics", "technology", "energy", "health"}

// burstTopic gets a disproportionate share of items so the trend detector
// has something to flag.
const burstTopic = "grid failure"

var headlineTemplates = map[string][]string{
	"markets":    {"Central bank raises key interest rates", "Stocks slide after earnings miss", "Treasury yields climb on inflation data"},
	"conflict":   {"Missile strikes reported near border region", "Troops mobilize amid escalation fears", "Ceasefire talks resume after offensive"},
	"politics":   {"Parliament schedules budget confidence vote", "Coalition talks stall over spending plan", "Election commission confirms runoff date"},
	"technology": {"Chipmaker unveils next generation accelerator", "Regulators open inquiry into platform practices", "Open source project patches critical flaw"},
	"energy":     {"Grid operator warns of winter supply strain", "Refinery outage lifts fuel prices", "Offshore wind auction draws record bids"},
	"health":     {"Hospital systems report seasonal surge", "New treatment clears late stage trial", "Health agency updates vaccination guidance"},
	burstTopic:   {"Power grid outage spreads across region", "Cascading grid failures hit major cities", "Utilities scramble as blackout widens"},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a random element of list.
func pick(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}

// generateCandidates creates the specified number of synthetic candidates.
func generateCandidates(ctx context.Context, config *Config, stats *Stats) ([]Candidate, error) {
	logger.Get().Info(ctx, "generating synthetic candidates", logger.Int("numCandidates", config.NumCandidates))

	candidates := make([]Candidate, config.NumCandidates)

	type candidateResult struct {
		index     int
		candidate Candidate
		err       error
	}

	resultChan := make(chan candidateResult, config.NumCandidates)

	workerCount := minInt(config.Workers, config.NumCandidates)
	perWorker := config.NumCandidates / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumCandidates
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- candidateResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- candidateResult{index: i, candidate: generateSingleCandidate(i)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumCandidates; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during candidate generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate candidate %d: %w", result.index, result.err)
			}
			candidates[result.index] = result.candidate
		}
	}

	stats.CandidatesGenerated = len(candidates)
	logger.Get().Info(ctx, "generated candidates successfully", logger.Int("count", len(candidates)))

	return candidates, nil
}

// generateSingleCandidate creates one candidate with tier-shaped signals.
func generateSingleCandidate(index int) Candidate {
	topic := pick(topics)
	if index%burstTopicShare == 0 {
		topic = burstTopic
	}

	var source string
	var evidence float64
	if getRandomFloat() < 0.5 {
		source = pick(wireSources)
		evidence = wireEvidenceMin + getRandomFloat()*wireEvidenceRange
	} else {
		source = pick(socialSources)
		evidence = socialEvidenceMin + getRandomFloat()*socialEvidenceRange
	}

	id := uuid.New().String()
	title := pick(headlineTemplates[topic])

	return Candidate{
		ID:               id,
		Title:            title,
		Source:           source,
		Summary:          title + " according to " + source + " reporting on " + topic,
		URL:              "https://" + source + ".example.org/" + id,
		Topic:            topic,
		EvidenceScore:    evidence,
		NoveltyScore:     noveltyMin + getRandomFloat()*noveltyRange,
		PreferenceFit:    fitMin + getRandomFloat()*fitRange,
		PredictionSignal: predictionMin + getRandomFloat()*predictionRange,
		DiscoveredBy:     "feedgen",
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
