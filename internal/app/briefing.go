package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrel-intel/kestrel/internal/domain/corroboration"
	"github.com/kestrel-intel/kestrel/internal/domain/entities"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/internal/domain/scoring"
	"github.com/kestrel-intel/kestrel/internal/domain/trends"
	"github.com/kestrel-intel/kestrel/internal/domain/types"
	"github.com/kestrel-intel/kestrel/pkg/logger"
	"github.com/kestrel-intel/kestrel/pkg/metrics"
)

// moreWindowFactor widens the reserve drain so topic and seen-id filters do
// not starve a backfill response.
const moreWindowFactor = 4

// Briefing runs the full pipeline for one request and returns the ranked
// result. Runs are serialized; the pool keeps accumulating via intake workers
// while a run is in flight.
func (e *Engine) Briefing(ctx context.Context, req types.BriefingRequest) (*types.Briefing, error) {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	e.pipelineMu.Lock()
	defer e.pipelineMu.Unlock()

	start := time.Now()
	maxItems := req.MaxItems
	if maxItems < 1 {
		maxItems = e.defaultMaxItems
	}

	// Snapshot the pool. Stages mutate candidates in place, which is safe
	// because runs are serialized and intake only appends.
	e.mu.RLock()
	pool := make([]*model.Candidate, len(e.pool))
	copy(pool, e.pool)
	e.mu.RUnlock()

	if err := e.blendPreferences(ctx, pool, req.TopicWeights); err != nil {
		return nil, fmt.Errorf("preference blending: %w", err)
	}

	stage := func(name string, fn func()) {
		stageStart := time.Now()
		fn()
		metrics.RecordStageLatency(name, float64(time.Since(stageStart).Milliseconds()))
	}

	var corroborated int
	stage("corroboration", func() {
		pairs := e.corroboration.Detect(pool)
		for _, p := range pairs {
			e.credibility.RecordCorroboration(p.A, p.B)
		}
		for _, c := range pool {
			if len(c.CorroboratedBy) > 0 {
				corroborated++
			}
		}
		metrics.RecordCorroboratedItems(corroborated)
	})

	stage("urgency", func() {
		e.urgency.Assess(pool)
	})

	var risks []model.GeoRiskEntry
	stage("georisk", func() {
		risks = e.georisk.Assess(pool)
		metrics.UpdateRegionsAssessed(len(risks))
	})

	var snapshots []model.TrendSnapshot
	var emerging []model.TrendSnapshot
	stage("trends", func() {
		snapshots = e.trends.Analyze(pool)
		emerging = trends.EmergingTopics(snapshots)
		metrics.UpdateEmergingTrends(len(emerging))
		metrics.UpdateTrackedTrendTopics(e.trends.Size())
	})

	var found []entities.Entity
	stage("entities", func() {
		found = e.entities.Extract(pool)
	})

	credScore := func(c model.Candidate) float64 {
		return e.credibility.ScoreCandidate(c)
	}

	var ranked []*model.Candidate
	stage("diversity", func() {
		ranked = corroboration.EnforceDiversity(pool, e.intel.MaxItemsPerSource, credScore)
	})

	selected := ranked
	if len(ranked) > maxItems {
		selected = ranked[:maxItems]
		for _, c := range ranked[maxItems:] {
			if err := e.reserve.Put(ctx, c, credScore(*c)); err != nil {
				e.logger.Warn(ctx, "reserve put failed",
					logger.String("candidateID", c.ID),
					logger.Error(err),
				)
			}
		}
	}

	var threads []*model.NarrativeThread
	stage("clustering", func() {
		threads = e.clusterer.Cluster(selected)
		metrics.RecordThreadsBuilt(len(threads))
	})

	threadOf := make(map[string]*model.NarrativeThread, len(selected))
	threadViews := make([]types.ThreadView, 0, len(threads))
	for _, t := range threads {
		threadViews = append(threadViews, types.NewThreadView(*t))
		for _, c := range t.Candidates {
			threadOf[c.ID] = t
		}
	}

	items := make([]types.BriefingItem, 0, len(selected))
	for _, c := range selected {
		item := types.BriefingItem{
			Candidate:        types.NewCandidateView(*c),
			CredibilityScore: credScore(*c),
		}
		if t, ok := threadOf[c.ID]; ok {
			item.ThreadID = t.ThreadID
			item.Confidence = types.NewConfidenceView(t.Confidence)
		}
		items = append(items, item)
	}

	riskViews := make([]types.GeoRiskView, 0, len(risks))
	for _, r := range risks {
		riskViews = append(riskViews, types.NewGeoRiskView(r))
	}
	trendViews := make([]types.TrendView, 0, len(snapshots))
	for _, s := range snapshots {
		trendViews = append(trendViews, types.NewTrendView(s))
	}

	e.mu.Lock()
	e.lastRisks = risks
	e.lastTrends = snapshots
	e.mu.Unlock()

	metrics.RecordBriefingBuilt()
	metrics.RecordBriefingLatency(float64(time.Since(start).Milliseconds()))

	e.logger.Info(ctx, "briefing built",
		logger.String("requestID", req.RequestID),
		logger.String("userID", req.UserID),
		logger.Int("poolSize", len(pool)),
		logger.Int("items", len(items)),
		logger.Int("threads", len(threads)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return &types.Briefing{
		RequestID:   req.RequestID,
		UserID:      req.UserID,
		GeneratedAt: time.Now().UTC(),
		Items:       items,
		Threads:     threadViews,
		GeoRisks:    riskViews,
		Trends:      trendViews,
		Metadata: map[string]interface{}{
			"candidates_considered": len(pool),
			"corroborated_items":    corroborated,
			"emerging_topics":       len(emerging),
			"entities_tracked":      len(found),
			"reserve_entries":       e.reserve.Count(ctx),
		},
	}, nil
}

// blendPreferences recomputes each candidate's preference fit against the
// requester's topic weights.
func (e *Engine) blendPreferences(ctx context.Context, pool []*model.Candidate, topicWeights map[string]float64) error {
	stageStart := time.Now()
	defer func() {
		metrics.RecordStageLatency("preference_fit", float64(time.Since(stageStart).Milliseconds()))
	}()

	if len(topicWeights) == 0 {
		return nil
	}
	for _, c := range pool {
		res, err := e.scorer.Score(ctx, scoring.Input{
			CandidateID:  c.ID,
			Topic:        c.Topic,
			BaseFit:      c.PreferenceFit,
			TopicWeights: topicWeights,
		})
		if err != nil {
			return err
		}
		c.PreferenceFit = res.PreferenceFit
	}
	return nil
}

// MoreItems serves backfill from the reserve store, skipping already-seen ids
// and honoring an optional topic filter. Served entries leave the reserve.
func (e *Engine) MoreItems(ctx context.Context, userID, topic string, seen []string, limit int) ([]types.BriefingItem, error) {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	seenSet := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		seenSet[id] = struct{}{}
	}

	// Pop a wider window than requested so filtered-out entries do not
	// starve the response, then return the rejects to the reserve.
	window := limit * moreWindowFactor
	entries, err := e.reserve.More(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("reserve drain: %w", err)
	}

	credScore := func(c model.Candidate) float64 {
		return e.credibility.ScoreCandidate(c)
	}

	items := make([]types.BriefingItem, 0, limit)
	for _, entry := range entries {
		c := entry.Candidate
		_, skip := seenSet[c.ID]
		if !skip && topic != "" && c.Topic != topic {
			skip = true
		}
		if skip || len(items) >= limit {
			// Not served this round; put it back.
			if err := e.reserve.Put(ctx, c, entry.Score); err != nil {
				e.logger.Warn(ctx, "reserve restore failed",
					logger.String("candidateID", c.ID),
					logger.Error(err),
				)
			}
			continue
		}
		items = append(items, types.BriefingItem{
			Candidate:        types.NewCandidateView(*c),
			CredibilityScore: credScore(*c),
		})
	}

	metrics.RecordReserveItemsServed(len(items))
	metrics.UpdateReserveEntries(e.reserve.Count(ctx))

	e.logger.Debug(ctx, "backfill served",
		logger.String("userID", userID),
		logger.String("topic", topic),
		logger.Int("items", len(items)),
	)

	return items, nil
}

// GeoRisk returns the geo-risk entries from the most recent pipeline run.
func (e *Engine) GeoRisk(ctx context.Context) []model.GeoRiskEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.GeoRiskEntry, len(e.lastRisks))
	copy(out, e.lastRisks)
	return out
}

// Trends returns the trend snapshots from the most recent pipeline run.
func (e *Engine) Trends(ctx context.Context) []model.TrendSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.TrendSnapshot, len(e.lastTrends))
	copy(out, e.lastTrends)
	return out
}

// SourcesByTier returns tier membership for every tracked source.
func (e *Engine) SourcesByTier(ctx context.Context) map[string][]string {
	return e.credibility.SourcesByTier()
}

// SourceSnapshot returns the reliability state of every tracked source.
func (e *Engine) SourceSnapshot(ctx context.Context) map[string]model.SourceReliability {
	return e.credibility.Snapshot()
}

// Entities returns the accumulated entity dashboard.
func (e *Engine) Entities(ctx context.Context) []entities.Entity {
	return e.entities.Snapshot()
}
