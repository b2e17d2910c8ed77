package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func reserved(id string) *model.Candidate {
	return &model.Candidate{ID: id, Title: "title " + id, Source: "reuters"}
}

func TestTreapStore(t *testing.T) {
	Convey("Given a fresh reserve store", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx)
		defer s.Close()

		Convey("When candidates are reserved", func() {
			So(s.Put(ctx, reserved("a"), 0.8), ShouldBeNil)
			So(s.Put(ctx, reserved("b"), 0.6), ShouldBeNil)
			So(s.Put(ctx, reserved("c"), 0.9), ShouldBeNil)

			Convey("Then Peek returns them best first without draining", func() {
				out, err := s.Peek(ctx, 2)
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 2)
				So(out[0].Candidate.ID, ShouldEqual, "c")
				So(out[1].Candidate.ID, ShouldEqual, "a")
				So(s.Count(ctx), ShouldEqual, 3)
			})

			Convey("Then More drains them best first", func() {
				out, err := s.More(ctx, 2)
				So(err, ShouldBeNil)
				So(out[0].Candidate.ID, ShouldEqual, "c")
				So(out[1].Candidate.ID, ShouldEqual, "a")
				So(s.Count(ctx), ShouldEqual, 1)

				rest, err := s.More(ctx, 10)
				So(err, ShouldBeNil)
				So(rest, ShouldHaveLength, 1)
				So(rest[0].Candidate.ID, ShouldEqual, "b")
				So(s.Count(ctx), ShouldEqual, 0)
			})

			Convey("Then equal scores break ties by id", func() {
				So(s.Put(ctx, reserved("d"), 0.9), ShouldBeNil)
				out, err := s.Peek(ctx, 2)
				So(err, ShouldBeNil)
				So(out[0].Candidate.ID, ShouldEqual, "c")
				So(out[1].Candidate.ID, ShouldEqual, "d")
			})
		})

		Convey("When a candidate is re-put", func() {
			So(s.Put(ctx, reserved("a"), 0.5), ShouldBeNil)
			So(s.Put(ctx, reserved("a"), 0.3), ShouldBeNil)

			Convey("Then the higher score wins and no duplicate exists", func() {
				So(s.Count(ctx), ShouldEqual, 1)
				out, _ := s.Peek(ctx, 1)
				So(out[0].Score, ShouldAlmostEqual, 0.5, 0.0001)
			})

			Convey("And an improvement replaces the old rank", func() {
				So(s.Put(ctx, reserved("a"), 0.7), ShouldBeNil)
				out, _ := s.Peek(ctx, 1)
				So(out[0].Score, ShouldAlmostEqual, 0.7, 0.0001)
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the limit is invalid", func() {
			_, err := s.More(ctx, 0)
			So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)

			_, err = s.Peek(ctx, -1)
			So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When the candidate is nil", func() {
			So(errors.Is(s.Put(ctx, nil, 0.5), ErrNilCandidate), ShouldBeTrue)
		})
	})
}

func TestTreapStoreCapacity(t *testing.T) {
	Convey("Given a reserve bounded to 3 entries", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx, WithMaxEntries(3))
		defer s.Close()

		So(s.Put(ctx, reserved("a"), 0.5), ShouldBeNil)
		So(s.Put(ctx, reserved("b"), 0.6), ShouldBeNil)
		So(s.Put(ctx, reserved("c"), 0.7), ShouldBeNil)

		Convey("When a better candidate arrives at capacity", func() {
			So(s.Put(ctx, reserved("d"), 0.8), ShouldBeNil)

			Convey("Then the worst entry is dropped", func() {
				So(s.Count(ctx), ShouldEqual, 3)
				out, _ := s.Peek(ctx, 3)
				ids := []string{out[0].Candidate.ID, out[1].Candidate.ID, out[2].Candidate.ID}
				So(ids, ShouldResemble, []string{"d", "c", "b"})
			})
		})

		Convey("When a below-floor candidate arrives at capacity", func() {
			So(s.Put(ctx, reserved("e"), 0.4), ShouldBeNil)

			Convey("Then it is not admitted", func() {
				So(s.Count(ctx), ShouldEqual, 3)
				out, _ := s.Peek(ctx, 3)
				So(out[2].Candidate.ID, ShouldEqual, "a")
			})
		})
	})
}

func TestTreapStoreConcurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx, WithMaxEntries(10_000))
		defer s.Close()

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					id := fmt.Sprintf("cand-%d-%d", g, i)
					_ = s.Put(ctx, reserved(id), float64(i%100)/100.0)
					if i%50 == 0 {
						_, _ = s.Peek(ctx, 10)
					}
				}
			}(g)
		}
		wg.Wait()

		Convey("Then the store holds every distinct candidate", func() {
			So(s.Count(ctx), ShouldEqual, 1600)
		})

		Convey("And draining returns monotonically non-increasing scores", func() {
			out, err := s.More(ctx, 1600)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1600)
			for i := 1; i < len(out); i++ {
				So(out[i].Score, ShouldBeLessThanOrEqualTo, out[i-1].Score)
			}
		})
	})
}
