package urgency

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func candidateAt(id, topic, source, title string, age time.Duration) *model.Candidate {
	return &model.Candidate{
		ID:        id,
		Topic:     topic,
		Source:    source,
		Title:     title,
		URL:       "https://news.test/" + id,
		CreatedAt: fixedNow().Add(-age),
	}
}

func TestAssess(t *testing.T) {
	Convey("Given an urgency detector with a fixed clock", t, func() {
		d := NewDetector(WithNow(fixedNow))

		Convey("When a title carries a breaking keyword", func() {
			c := candidateAt("a", "geo", "reuters", "War erupts along border", 2*time.Hour)
			d.Assess([]*model.Candidate{c})

			Convey("Then it is at least breaking", func() {
				So(c.Urgency, ShouldEqual, model.UrgencyBreaking)
				So(c.Lifecycle, ShouldEqual, model.LifecycleBreaking)
			})
		})

		Convey("When a title carries an elevated keyword only", func() {
			c := candidateAt("b", "policy", "bbc", "New regulation announced for banks", 2*time.Hour)
			d.Assess([]*model.Candidate{c})

			So(c.Urgency, ShouldEqual, model.UrgencyElevated)
		})

		Convey("When every item of a topic landed within the window", func() {
			pool := []*model.Candidate{
				candidateAt("c1", "markets", "ft", "Stocks drift sideways", 5*time.Minute),
				candidateAt("c2", "markets", "ft", "Bond yields steady today", 10*time.Minute),
			}
			d.Assess(pool)

			Convey("Then velocity 1.0 yields critical", func() {
				So(pool[0].Urgency, ShouldEqual, model.UrgencyCritical)
				So(pool[0].Lifecycle, ShouldEqual, model.LifecycleBreaking)
			})
		})

		Convey("When a topic spans five distinct sources", func() {
			pool := []*model.Candidate{
				candidateAt("s1", "vote", "reuters", "Parliament convenes session", 3*time.Hour),
				candidateAt("s2", "vote", "ap", "Lawmakers gather for debate", 3*time.Hour),
				candidateAt("s3", "vote", "bbc", "Chamber opens proceedings", 3*time.Hour),
				candidateAt("s4", "vote", "guardian", "Assembly begins deliberation", 3*time.Hour),
				candidateAt("s5", "vote", "ft", "Legislature starts hearings", 3*time.Hour),
			}
			d.Assess(pool)

			Convey("Then source breadth marks the topic breaking", func() {
				So(pool[2].Urgency, ShouldEqual, model.UrgencyBreaking)
			})
		})

		Convey("When an item is only minutes old", func() {
			pool := []*model.Candidate{
				candidateAt("r1", "tech", "hackernews", "Startup ships product update", 3*time.Minute),
				candidateAt("r2", "tech", "hackernews", "Old thread resurfaces quietly", 6*time.Hour),
				candidateAt("r3", "tech", "hackernews", "Archived post gains traction", 6*time.Hour),
				candidateAt("r4", "tech", "hackernews", "Another stale discussion", 6*time.Hour),
			}
			d.Assess(pool)

			Convey("Then recency alone elevates it", func() {
				So(pool[0].Urgency, ShouldEqual, model.UrgencyElevated)
			})
		})

		Convey("When a quiet story has low novelty", func() {
			pool := []*model.Candidate{
				candidateAt("w1", "misc", "web", "Routine quarterly report filed", 6*time.Hour),
				candidateAt("w2", "misc", "web", "Minutes published without change", 6*time.Hour),
				candidateAt("w3", "misc", "web", "Committee restates prior view", 6*time.Hour),
				candidateAt("w4", "misc", "web", "Footnote amended in filing", 6*time.Hour),
			}
			pool[0].NoveltyScore = 0.1
			pool[1].NoveltyScore = 0.5
			d.Assess(pool)

			Convey("Then it is waning while its fresher peer is ongoing", func() {
				So(pool[0].Lifecycle, ShouldEqual, model.LifecycleWaning)
				So(pool[1].Lifecycle, ShouldEqual, model.LifecycleOngoing)
			})
		})

		Convey("When placeholder items dominate a topic", func() {
			pool := []*model.Candidate{
				candidateAt("p1", "synth", "web", "Generated filler entry one", 1*time.Minute),
				candidateAt("p2", "synth", "web", "Generated filler entry two", 1*time.Minute),
			}
			pool[0].URL = "https://example.com/p1"
			pool[1].URL = "https://example.com/p2"
			pool[0].CreatedAt = fixedNow().Add(-6 * time.Hour)
			pool[1].CreatedAt = fixedNow().Add(-6 * time.Hour)
			d.Assess(pool)

			Convey("Then they contribute no velocity signal", func() {
				So(pool[0].Urgency, ShouldEqual, model.UrgencyRoutine)
			})
		})
	})
}

func TestVelocityTiers(t *testing.T) {
	Convey("Given the default velocity thresholds", t, func() {
		d := NewDetector()

		So(d.velocityUrgency(0.9), ShouldEqual, model.UrgencyCritical)
		So(d.velocityUrgency(0.6), ShouldEqual, model.UrgencyBreaking)
		So(d.velocityUrgency(0.4), ShouldEqual, model.UrgencyElevated)
		So(d.velocityUrgency(0.1), ShouldEqual, model.UrgencyRoutine)
	})
}
