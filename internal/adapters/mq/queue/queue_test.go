package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	queue "github.com/kestrel-intel/kestrel/internal/adapters/mq/queue"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func queued(id string) *model.Candidate {
	return &model.Candidate{ID: id, Title: "title " + id, Source: "reuters"}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a new in-memory queue", t, func() {
		Convey("When enqueuing candidates", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
			defer q.Close()

			Convey("And the queue has room", func() {
				ok := q.Enqueue(context.Background(), queued("a"))

				So(ok, ShouldBeTrue)
				So(q.Len(context.Background()), ShouldEqual, 1)
			})

			Convey("And the queue is full", func() {
				for i := 0; i < 10; i++ {
					So(q.Enqueue(context.Background(), queued(fmt.Sprintf("c-%d", i))), ShouldBeTrue)
				}

				ok := q.Enqueue(context.Background(), queued("overflow"))

				So(ok, ShouldBeFalse)
				So(q.Len(context.Background()), ShouldEqual, 10)
			})

			Convey("And the queue is closed", func() {
				So(q.Close(), ShouldBeNil)

				ok := q.Enqueue(context.Background(), queued("late"))

				So(ok, ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})

		Convey("When dequeuing candidates", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))

			q.Enqueue(context.Background(), queued("a"))
			q.Enqueue(context.Background(), queued("b"))
			q.Close()

			Convey("Then items come out in order and the channel closes", func() {
				ch := q.Dequeue(context.Background())

				first := <-ch
				second := <-ch
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")

				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the queue closes while a consumer waits", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))

			ch := q.Dequeue(context.Background())
			q.Close()

			Convey("Then the dequeue channel closes", func() {
				select {
				case _, open := <-ch:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})

		Convey("When closing twice", func() {
			q := queue.NewInMemoryQueue()

			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
		})
	})
}

func TestQueueConcurrency(t *testing.T) {
	Convey("Given concurrent producers and one consumer", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10_000), queue.WithBufferSize(10_000))

		const producers = 8
		const perProducer = 100

		var wg sync.WaitGroup
		for g := 0; g < producers; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					q.Enqueue(context.Background(), queued(fmt.Sprintf("c-%d-%d", g, i)))
				}
			}(g)
		}
		wg.Wait()
		q.Close()

		Convey("Then every candidate is delivered exactly once", func() {
			seen := make(map[string]bool)
			for c := range q.Dequeue(context.Background()) {
				So(seen[c.ID], ShouldBeFalse)
				seen[c.ID] = true
			}
			So(len(seen), ShouldEqual, producers*perProducer)
		})
	})
}
