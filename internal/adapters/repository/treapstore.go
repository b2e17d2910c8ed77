package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then candidate ID ASC (deterministic). In-order
// traversal yields the reserve from best to worst, so More/Peek walk the
// tree left to right and stop at the limit.

// scoreScale controls fixed-point scaling from float64. Scores live in
// [0,1]; twelve decimal places keeps ordering stable across float noise.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		x = 1
	}
	if x < 0 {
		x = 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority keeps higher scores nearer the root.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63
	return uint64(score) + offset
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// lastNode returns the worst-ranked node (rightmost).
func lastNode(n *node) *node {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

// collectTopN appends up to limit entries in rank order (best first).
func collectTopN(n *node, limit int, records map[string]Entry, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, rec)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// TreapStore is the in-memory reserve backing follow-up item requests.
type TreapStore struct {
	mu         sync.RWMutex
	root       *node
	byID       map[string]Entry
	scores     map[string]scoreFP
	maxEntries int

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
}

// NewTreapStore constructs a reserve store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]Entry),
		scores:                make(map[string]scoreFP),
		maxEntries:            1000,
		metricsUpdateInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)
	return s
}

// Close gracefully shuts down the metrics goroutine.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Put implements Store.Put with O(log n) expected time.
func (s *TreapStore) Put(ctx context.Context, c *model.Candidate, score float64) error {
	if c == nil {
		return ErrNilCandidate
	}

	ns := toFixedPoint(score)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.scores[c.ID]; ok {
		if ns <= old {
			return nil
		}
		s.root = deleteNode(s.root, c.ID, old)
	} else if len(s.byID) >= s.maxEntries {
		worst := lastNode(s.root)
		if worst == nil || ns <= worst.score {
			// below the floor of a full reserve
			return nil
		}
		s.root = deleteNode(s.root, worst.id, worst.score)
		delete(s.byID, worst.id)
		delete(s.scores, worst.id)
	}

	s.byID[c.ID] = Entry{Candidate: c, Score: toFloat(ns)}
	s.scores[c.ID] = ns
	s.root = insert(s.root, c.ID, ns)
	return nil
}

// More implements Store.More: removes and returns the best n entries.
func (s *TreapStore) More(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("reserve", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	for _, e := range out {
		id := e.Candidate.ID
		s.root = deleteNode(s.root, id, s.scores[id])
		delete(s.byID, id)
		delete(s.scores, id)
	}

	metrics.RecordReserveItemsServed(len(out))
	return out, nil
}

// Peek implements Store.Peek: returns the best n entries without removal.
func (s *TreapStore) Peek(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("reserve", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	return out, nil
}

// Count returns the number of reserved candidates.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateReserveEntries(s.Count(ctx))
			}
		}
	}()
}
