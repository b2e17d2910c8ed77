package trends

import (
	"fmt"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func aged(topic string, age time.Duration) *model.Candidate {
	return &model.Candidate{
		ID:        fmt.Sprintf("%s-%d", topic, age/time.Second),
		Topic:     topic,
		URL:       "https://news.test/" + topic,
		CreatedAt: fixedNow().Add(-age),
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given a trend detector with a fixed clock", t, func() {
		d := NewDetector(WithNow(fixedNow))

		Convey("When 9 of 10 topic items landed in the window", func() {
			pool := make([]*model.Candidate, 0, 10)
			for i := 0; i < 9; i++ {
				pool = append(pool, aged("ai_chips", time.Duration(i+1)*time.Minute))
			}
			pool = append(pool, aged("ai_chips", 2*time.Hour))
			snaps := d.Analyze(pool)

			Convey("Then velocity and anomaly match the burst", func() {
				So(snaps, ShouldHaveLength, 1)
				So(snaps[0].Velocity, ShouldAlmostEqual, 0.9, 0.0001)
				So(snaps[0].AnomalyScore, ShouldAlmostEqual, 3.0, 0.0001)
				So(snaps[0].IsEmerging, ShouldBeTrue)
			})
		})

		Convey("When a topic has a single fresh item", func() {
			snaps := d.Analyze([]*model.Candidate{aged("one_off", time.Minute)})

			Convey("Then the sample floor suppresses the emerging flag", func() {
				So(snaps[0].AnomalyScore, ShouldBeGreaterThanOrEqualTo, 2.0)
				So(snaps[0].IsEmerging, ShouldBeFalse)
			})
		})

		Convey("When a topic runs at steady velocity across analyses", func() {
			pool := []*model.Candidate{
				aged("steady", time.Minute),
				aged("steady", 2*time.Minute),
				aged("steady", time.Hour),
				aged("steady", 2*time.Hour),
			}

			Convey("Then the baseline converges toward the observed velocity", func() {
				prevDistance := math.Abs(0.3 - 0.5)
				for i := 0; i < 6; i++ {
					d.Analyze(pool)
					distance := math.Abs(d.Snapshot()["steady"] - 0.5)
					So(distance, ShouldBeLessThan, prevDistance)
					prevDistance = distance
				}
			})

			Convey("And the anomaly ratio approaches 1 as the baseline adapts", func() {
				var last model.TrendSnapshot
				for i := 0; i < 10; i++ {
					last = d.Analyze(pool)[0]
				}
				So(last.AnomalyScore, ShouldAlmostEqual, 1.0, 0.1)
				So(last.IsEmerging, ShouldBeFalse)
			})
		})

		Convey("When items carry placeholder urls", func() {
			pool := []*model.Candidate{
				{ID: "p", Topic: "synthetic", URL: "https://example.com/x", CreatedAt: fixedNow()},
			}
			snaps := d.Analyze(pool)

			So(snaps, ShouldBeEmpty)
		})

		Convey("When snapshots span topics", func() {
			pool := []*model.Candidate{
				aged("hot", time.Minute),
				aged("hot", 2*time.Minute),
				aged("cold", 2*time.Hour),
				aged("cold", 3*time.Hour),
			}
			snaps := d.Analyze(pool)

			Convey("Then they come back sorted by anomaly descending", func() {
				So(snaps[0].Topic, ShouldEqual, "hot")
				So(snaps[1].Topic, ShouldEqual, "cold")
			})
		})
	})
}

func TestEviction(t *testing.T) {
	Convey("Given a detector bounded to 3 topics", t, func() {
		d := NewDetector(WithNow(fixedNow), WithMaxTopics(3))

		Convey("When a fourth topic arrives after the others settle", func() {
			busy := []*model.Candidate{
				aged("a", time.Minute), aged("a", 2*time.Minute),
				aged("b", time.Minute), aged("b", 2*time.Minute),
				aged("c", 2*time.Hour), aged("c", 3*time.Hour),
			}
			d.Analyze(busy)
			d.Analyze([]*model.Candidate{aged("d", time.Minute)})

			Convey("Then the lowest-baseline topic is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				snap := d.Snapshot()
				So(snap, ShouldNotContainKey, "c")
				So(snap, ShouldContainKey, "d")
			})
		})
	})
}

func TestEmergingTopics(t *testing.T) {
	Convey("EmergingTopics keeps only flagged snapshots", t, func() {
		snaps := []model.TrendSnapshot{
			{Topic: "a", IsEmerging: true},
			{Topic: "b"},
		}
		out := EmergingTopics(snaps)
		So(out, ShouldHaveLength, 1)
		So(out[0].Topic, ShouldEqual, "a")
	})
}
