package worker

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

type stubQueue struct {
	items chan Item
}

func newStubQueue(buffer int) *stubQueue {
	return &stubQueue{items: make(chan Item, buffer)}
}

func (q *stubQueue) Dequeue(ctx context.Context) <-chan Item {
	return q.items
}

type stubRecorder struct {
	mu       sync.Mutex
	recorded []string
	err      error
	admit    bool
}

func (r *stubRecorder) RecordCandidate(ctx context.Context, c Item) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	r.recorded = append(r.recorded, c.ID)
	return r.admit, nil
}

func (r *stubRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.recorded))
	copy(out, r.recorded)
	return out
}

func candidate(id string) *model.Candidate {
	return &model.Candidate{
		ID:     id,
		Topic:  "markets",
		Source: "reuters",
		Title:  "test item " + id,
	}
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker reading from a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := newStubQueue(16)
		rec := &stubRecorder{admit: true}
		w := NewInMemoryWorker(q, rec, WithName("worker-test"))

		Convey("When candidates are enqueued", func() {
			go w.Run(ctx)
			q.items <- candidate("c1")
			q.items <- candidate("c2")
			q.items <- candidate("c3")

			So(waitFor(func() bool { return len(rec.ids()) == 3 }), ShouldBeTrue)

			Convey("Then every candidate reaches the recorder", func() {
				So(rec.ids(), ShouldResemble, []string{"c1", "c2", "c3"})
			})
		})

		Convey("When the recorder fails", func() {
			rec.err = errors.New("pool rejected intake")
			go w.Run(ctx)
			q.items <- candidate("c1")
			q.items <- candidate("c2")

			Convey("Then the worker keeps draining the queue", func() {
				So(waitFor(func() bool { return len(q.items) == 0 }), ShouldBeTrue)
				So(rec.ids(), ShouldBeEmpty)
			})
		})

		Convey("When the dequeue channel closes", func() {
			go w.Run(ctx)
			close(q.items)

			Convey("Then the worker stops on its own", func() {
				select {
				case <-w.done:
				case <-time.After(time.Second):
					t.Fatal("worker did not stop after channel close")
				}
			})
		})

		Convey("When Shutdown is called", func() {
			go w.Run(ctx)

			Convey("Then it returns once the worker loop exits", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})

		Convey("When Shutdown times out before the worker exits", func() {
			// Run is never started, so done never closes.
			expired, expire := context.WithCancel(context.Background())
			expire()
			err := w.Shutdown(expired)

			Convey("Then a timeout error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers sharing one queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := newStubQueue(256)
		rec := &stubRecorder{admit: true}

		Convey("When 4 workers drain 100 candidates", func() {
			p := NewPool(4, q, rec)
			p.Start(ctx)

			for i := 0; i < 100; i++ {
				q.items <- candidate("c-" + strconv.Itoa(i))
			}

			Convey("Then all candidates are recorded exactly once", func() {
				So(waitFor(func() bool { return len(rec.ids()) == 100 }), ShouldBeTrue)
			})
		})

		Convey("When the worker count is invalid", func() {
			p := NewPool(0, q, rec)

			Convey("Then the pool falls back to a CPU-based size", func() {
				So(len(p.workers), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the pool shuts down", func() {
			p := NewPool(2, q, rec)
			p.Start(ctx)

			Convey("Then Shutdown returns cleanly", func() {
				So(p.Shutdown(context.Background()), ShouldBeNil)
			})
		})
	})
}

// waitFor polls cond for up to two seconds.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
