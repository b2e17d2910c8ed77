// Package app provides the intelligence engine that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"sync"
	"time"

	candidatequeue "github.com/kestrel-intel/kestrel/internal/adapters/mq/queue"
	workerpool "github.com/kestrel-intel/kestrel/internal/adapters/mq/worker"
	"github.com/kestrel-intel/kestrel/internal/adapters/repository"
	"github.com/kestrel-intel/kestrel/internal/config"
	"github.com/kestrel-intel/kestrel/internal/domain/clustering"
	"github.com/kestrel-intel/kestrel/internal/domain/corroboration"
	"github.com/kestrel-intel/kestrel/internal/domain/credibility"
	"github.com/kestrel-intel/kestrel/internal/domain/dedupe"
	"github.com/kestrel-intel/kestrel/internal/domain/entities"
	"github.com/kestrel-intel/kestrel/internal/domain/georisk"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/internal/domain/scoring"
	"github.com/kestrel-intel/kestrel/internal/domain/trends"
	"github.com/kestrel-intel/kestrel/internal/domain/urgency"
	"github.com/kestrel-intel/kestrel/pkg/logger"
	"github.com/kestrel-intel/kestrel/pkg/metrics"
)

// Engine orchestrates the intelligence pipeline and implements the API
// dependency surface.
type Engine struct {
	mu sync.RWMutex

	// Working pool of candidates, oldest first. Bounded by poolSize.
	pool []*model.Candidate

	// Core components
	deduper     dedupe.Deduper
	intakeQueue candidatequeue.Queue
	workerPool  *workerpool.Pool
	reserve     repository.Store

	credibility   *credibility.Tracker
	corroboration *corroboration.Detector
	urgency       *urgency.Detector
	clusterer     *clustering.Clusterer
	georisk       *georisk.Index
	trends        *trends.Detector
	entities      *entities.Extractor
	scorer        scoring.Scorer

	// Configuration
	intel           config.Intelligence
	workerCount     int
	queueSize       int
	dedupeSize      int
	poolSize        int
	defaultMaxItems int
	reserveCapacity int

	// Pipeline runs are serialized; reads of the cached outputs are not.
	pipelineMu sync.Mutex
	lastRisks  []model.GeoRiskEntry
	lastTrends []model.TrendSnapshot

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWorkerCount sets the number of intake worker goroutines.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the intake queue.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.dedupeSize = size
		}
	}
}

// WithPoolSize bounds the working candidate pool.
func WithPoolSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.poolSize = size
		}
	}
}

// WithDefaultMaxItems caps the ranked item count in a briefing.
func WithDefaultMaxItems(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultMaxItems = n
		}
	}
}

// WithReserveCapacity bounds the backfill reserve store.
func WithReserveCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.reserveCapacity = n
		}
	}
}

// WithIntelligence sets the pipeline policy surface: tier tables, weights,
// thresholds, windows, region maps.
func WithIntelligence(intel config.Intelligence) Option {
	return func(e *Engine) {
		e.intel = intel
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger logger.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New constructs a new Engine with default configuration.
func New(opts ...Option) *Engine {
	defaults := config.New()
	e := &Engine{
		intel:           defaults.Intelligence,
		workerCount:     defaults.WorkerCount,
		queueSize:       defaults.IntakeQueueSize,
		dedupeSize:      defaults.DedupeSize,
		poolSize:        defaults.PoolSize,
		defaultMaxItems: defaults.DefaultMaxItems,
		reserveCapacity: defaults.ReserveEntries,
		logger:          nil, // replaced on Start when unset
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// scoreFunc builds the composite score closure from the configured weights.
func (e *Engine) scoreFunc() model.ScoreFunc {
	w := e.intel.CompositeWeights
	if w.Evidence+w.Novelty+w.Preference+w.Prediction <= 0 {
		return model.DefaultScore
	}
	weights := model.CompositeWeights{
		Evidence:   w.Evidence,
		Novelty:    w.Novelty,
		Preference: w.Preference,
		Prediction: w.Prediction,
	}
	return weights.Score
}

// Start initializes and starts the engine components.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	e.logger.Info(ctx, "starting intelligence engine...")

	score := e.scoreFunc()
	intel := e.intel

	e.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(e.dedupeSize),
	)
	e.intakeQueue = candidatequeue.NewInMemoryQueue(
		candidatequeue.WithCapacity(e.queueSize),
		candidatequeue.WithBufferSize(e.queueSize),
	)
	e.reserve = repository.NewTreapStore(ctx,
		repository.WithMaxEntries(e.reserveCapacity),
	)

	tiers := make(map[string]credibility.Tier, len(intel.SourceTiers))
	for name, t := range intel.SourceTiers {
		tiers[name] = credibility.Tier{Sources: t.Sources, BaseReliability: t.BaseReliability}
	}
	e.credibility = credibility.NewTracker(
		credibility.WithTierTable(credibility.NewTierTable(tiers, intel.BiasProfiles, intel.Credibility.UnknownBase)),
		credibility.WithWeights(credibility.Weights{
			Composite:      intel.Credibility.CompositeWeight,
			Trust:          intel.Credibility.TrustWeight,
			Evidence:       intel.Credibility.EvidenceWeight,
			BonusPerSource: intel.Credibility.BonusPerSource,
			BonusCap:       intel.Credibility.BonusCap,
		}),
		credibility.WithCorroborationIncrement(intel.Credibility.CorroborationIncrement),
		credibility.WithMaxSources(intel.Credibility.MaxSources),
		credibility.WithScoreFunc(score),
	)
	e.corroboration = corroboration.NewDetector(
		corroboration.WithJaccardThreshold(intel.Corroboration.JaccardThreshold),
		corroboration.WithTopicBreadthMinSources(intel.Corroboration.TopicBreadthMinSources),
	)
	e.urgency = urgency.NewDetector(
		urgency.WithVelocityWindow(time.Duration(intel.Urgency.VelocityWindowMinutes)*time.Minute),
		urgency.WithSourceThreshold(intel.Urgency.BreakingSourceThreshold),
		urgency.WithRecencyWindow(time.Duration(intel.Urgency.RecencyElevatedMinutes)*time.Minute),
		urgency.WithWaningNoveltyThreshold(intel.Urgency.WaningNoveltyThreshold),
		urgency.WithVelocityThresholds(urgency.VelocityThresholds{
			Critical: intel.Urgency.VelocityCritical,
			Breaking: intel.Urgency.VelocityBreaking,
			Elevated: intel.Urgency.VelocityElevated,
		}),
		urgency.WithKeywords(intel.Urgency.BreakingKeywords, intel.Urgency.ElevatedKeywords),
	)
	e.clusterer = clustering.NewClusterer(
		clustering.WithSimilarityThreshold(intel.Clustering.SimilarityThreshold),
		clustering.WithCrossSourceFactor(intel.Clustering.CrossSourceFactor),
		clustering.WithScoreFunc(score),
	)
	e.georisk = georisk.NewIndex(
		georisk.WithRegions(intel.GeoRisk.Regions),
		georisk.WithPrior(intel.GeoRisk.DefaultPreviousRisk),
		georisk.WithEscalationKeywords(intel.GeoRisk.EscalationKeywords, intel.GeoRisk.DeescalationKeywords),
		georisk.WithRiskWeights(georisk.RiskWeights{
			Base:                 intel.GeoRisk.BaseWeight,
			EscalationPerKeyword: intel.GeoRisk.EscalationPerKeyword,
			VolumePerItem:        intel.GeoRisk.VolumePerItem,
			VolumeCap:            intel.GeoRisk.VolumeCap,
		}),
		georisk.WithUrgencyFactors(georisk.UrgencyFactors{
			Critical: intel.GeoRisk.UrgencyFactorCritical,
			Breaking: intel.GeoRisk.UrgencyFactorBreaking,
			Elevated: intel.GeoRisk.UrgencyFactorElevated,
		}),
		georisk.WithMaxDrivers(intel.GeoRisk.MaxDrivers),
		georisk.WithScoreFunc(score),
	)
	e.trends = trends.NewDetector(
		trends.WithSampleWindow(time.Duration(intel.Trends.WindowMinutes)*time.Minute),
		trends.WithBaselineDecay(intel.Trends.BaselineDecay),
		trends.WithEmergingRatio(intel.Trends.AnomalyThreshold),
		trends.WithMaxTopics(intel.Trends.MaxTopics),
		trends.WithMinSample(intel.Trends.MinSample),
	)
	e.entities = entities.NewExtractor()
	e.scorer = scoring.NewInMemoryScorer()

	e.workerPool = workerpool.NewPool(e.workerCount, e.intakeQueue, e)
	e.workerPool.Start(ctx)

	e.started = true
	e.logger.Info(ctx, "intelligence engine started",
		logger.Int("workers", e.workerCount),
		logger.Int("queueSize", e.queueSize),
		logger.Int("poolSize", e.poolSize),
		logger.Int("dedupeSize", e.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}

	e.logger.Info(context.Background(), "stopping intelligence engine...")

	if e.workerPool != nil {
		e.workerPool.Stop()
	}
	if q, ok := e.intakeQueue.(*candidatequeue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if closer, ok := e.reserve.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	e.started = false
	e.logger.Info(context.Background(), "intelligence engine stopped")
}

// SeenAndRecord atomically checks if a candidate id was seen and records it
// if not. Returns true if the id was already seen.
func (e *Engine) SeenAndRecord(ctx context.Context, id string) bool {
	return e.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a candidate id from the seen set, allowing a retry.
func (e *Engine) Unrecord(ctx context.Context, id string) {
	e.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (e *Engine) Size() int64 {
	if e.deduper == nil {
		return 0
	}
	return e.deduper.Size()
}

// Enqueue submits a candidate for asynchronous intake.
func (e *Engine) Enqueue(ctx context.Context, c *model.Candidate) bool {
	if c == nil {
		return false
	}
	ok := e.intakeQueue.Enqueue(ctx, c)
	if ok {
		metrics.UpdateQueueSize(e.intakeQueue.Len(ctx))
	}
	return ok
}

// RecordCandidate admits a candidate into the working pool and updates
// per-source credibility state. Called by intake workers.
func (e *Engine) RecordCandidate(ctx context.Context, c *model.Candidate) (bool, error) {
	if c == nil {
		return false, nil
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	e.mu.Lock()
	if len(e.pool) >= e.poolSize {
		// Oldest items fall off first.
		drop := len(e.pool) - e.poolSize + 1
		e.pool = append(e.pool[:0], e.pool[drop:]...)
	}
	e.pool = append(e.pool, c)
	poolLen := len(e.pool)
	e.mu.Unlock()

	e.credibility.RecordItem(*c)
	metrics.UpdatePoolSize(poolLen)
	metrics.UpdateTrackedSources(e.credibility.Size())

	return true, nil
}

// GetStats returns engine statistics for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      e.started,
		"worker_count": e.workerCount,
		"queue_size":   e.queueSize,
		"pool_size":    len(e.pool),
		"dedupe_size":  e.dedupeSize,
	}

	if e.started {
		stats["queue_length"] = e.intakeQueue.Len(ctx)
		stats["tracked_sources"] = e.credibility.Size()
		stats["tracked_entities"] = e.entities.Size()
		stats["trend_topics"] = e.trends.Size()
		stats["reserve_entries"] = e.reserve.Count(ctx)
		stats["deduper_entries"] = e.deduper.Size()
	}

	return stats
}
