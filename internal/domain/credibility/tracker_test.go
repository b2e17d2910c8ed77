package credibility

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func fromSource(source string, uniform float64) model.Candidate {
	return model.Candidate{
		ID:               "c-" + source,
		Source:           source,
		EvidenceScore:    uniform,
		NoveltyScore:     uniform,
		PreferenceFit:    uniform,
		PredictionSignal: uniform,
	}
}

func TestTracker(t *testing.T) {
	Convey("Given a fresh credibility tracker", t, func() {
		tr := NewTracker()

		Convey("When an unseen tier-1 source is looked up", func() {
			sr := tr.GetSource("reuters")

			Convey("Then it initializes from its tier base", func() {
				So(sr.ReliabilityScore, ShouldAlmostEqual, 0.85, 0.0001)
				So(sr.HistoricalAccuracy, ShouldAlmostEqual, 0.85, 0.0001)
				So(sr.CorroborationRate, ShouldAlmostEqual, 0.5, 0.0001)
				So(sr.TotalItemsSeen, ShouldEqual, 0)
			})
		})

		Convey("When an unknown source is looked up", func() {
			sr := tr.GetSource("some-blog")

			So(sr.ReliabilityScore, ShouldAlmostEqual, 0.5, 0.0001)
		})

		Convey("When items are recorded", func() {
			tr.RecordItem(fromSource("reuters", 0.5))
			tr.RecordItem(fromSource("reuters", 0.5))

			So(tr.GetSource("reuters").TotalItemsSeen, ShouldEqual, 2)
		})

		Convey("When corroboration is recorded", func() {
			before := tr.GetSource("reuters").CorroborationRate
			tr.RecordCorroboration("reuters", "ap")

			Convey("Then both sources move by the increment", func() {
				So(tr.GetSource("reuters").CorroborationRate, ShouldAlmostEqual, before+0.02, 0.0001)
				So(tr.GetSource("ap").CorroborationRate, ShouldAlmostEqual, before+0.02, 0.0001)
			})

			Convey("And the rate saturates at one", func() {
				for i := 0; i < 60; i++ {
					tr.RecordCorroboration("reuters", "ap")
				}
				So(tr.GetSource("reuters").CorroborationRate, ShouldAlmostEqual, 1.0, 0.0001)
			})
		})

		Convey("When a candidate is scored", func() {
			c := fromSource("reuters", 0.6)

			Convey("Then the blend follows the configured weights", func() {
				trust := tr.GetSource("reuters").TrustFactor()
				want := 0.70*0.6 + 0.20*trust + 0.10*0.6
				So(tr.ScoreCandidate(c), ShouldAlmostEqual, want, 0.0001)
			})

			Convey("And corroborated items earn a capped bonus", func() {
				base := tr.ScoreCandidate(c)

				c.CorroboratedBy = []string{"ap"}
				So(tr.ScoreCandidate(c), ShouldAlmostEqual, base+0.08, 0.0001)

				c.CorroboratedBy = []string{"ap", "bbc", "ft", "guardian"}
				So(tr.ScoreCandidate(c), ShouldAlmostEqual, base+0.20, 0.0001)
			})

			Convey("And the result never exceeds one", func() {
				rich := fromSource("reuters", 1.0)
				rich.CorroboratedBy = []string{"ap", "bbc", "ft"}
				So(tr.ScoreCandidate(rich), ShouldBeLessThanOrEqualTo, 1.0)
			})

			Convey("And a trusted source outscores an unknown one", func() {
				known := tr.ScoreCandidate(fromSource("reuters", 0.6))
				unknown := tr.ScoreCandidate(fromSource("some-blog", 0.6))
				So(known, ShouldBeGreaterThan, unknown)
			})
		})

		Convey("When sources are grouped by tier", func() {
			tr.RecordItem(fromSource("reuters", 0.5))
			tr.RecordItem(fromSource("some-blog", 0.5))
			byTier := tr.SourcesByTier()

			So(byTier["tier_1"], ShouldContain, "reuters")
			So(byTier["unknown"], ShouldContain, "some-blog")
		})
	})
}

func TestTrackerEviction(t *testing.T) {
	Convey("Given a tracker capped at 3 sources", t, func() {
		tr := NewTracker(WithMaxSources(3))

		Convey("When unknown sources flood past capacity", func() {
			tr.RecordItem(fromSource("reuters", 0.5))
			tr.RecordItem(fromSource("blog-a", 0.5))
			tr.RecordItem(fromSource("blog-a", 0.5))
			tr.RecordItem(fromSource("blog-b", 0.5))
			// capacity reached; blog-c forces an eviction
			tr.RecordItem(fromSource("blog-c", 0.5))

			Convey("Then the least-seen unknown source goes first", func() {
				So(tr.Size(), ShouldEqual, 3)
				snap := tr.Snapshot()
				So(snap, ShouldNotContainKey, "blog-b")
				So(snap, ShouldContainKey, "reuters")
				So(snap, ShouldContainKey, "blog-a")
				So(snap, ShouldContainKey, "blog-c")
			})
		})

		Convey("When only known-tier sources fill the tracker", func() {
			for _, s := range []string{"reuters", "ap", "bbc"} {
				tr.RecordItem(fromSource(s, 0.5))
			}
			tr.RecordItem(fromSource("guardian", 0.5))

			Convey("Then known sources are never evicted for one another", func() {
				snap := tr.Snapshot()
				So(snap, ShouldContainKey, "reuters")
				So(snap, ShouldContainKey, "ap")
				So(snap, ShouldContainKey, "bbc")
				So(snap, ShouldContainKey, "guardian")
			})
		})
	})
}

func TestTrackerOptions(t *testing.T) {
	Convey("Given tracker options", t, func() {
		Convey("Custom weights change the blend", func() {
			tr := NewTracker(WithWeights(Weights{Composite: 1.0}))
			c := fromSource("reuters", 0.6)
			// trust, bonus and evidence keep their defaults
			trust := tr.GetSource("reuters").TrustFactor()
			want := min(1.0, 1.0*0.6+0.20*trust+0.10*0.6)
			So(tr.ScoreCandidate(c), ShouldAlmostEqual, want, 0.0001)
		})

		Convey("A custom increment changes corroboration pace", func() {
			tr := NewTracker(WithCorroborationIncrement(0.1))
			before := tr.GetSource("x").CorroborationRate
			tr.RecordCorroboration("x", "y")
			So(tr.GetSource("x").CorroborationRate, ShouldAlmostEqual, before+0.1, 0.0001)
		})

		Convey("A custom score func feeds the blend", func() {
			tr := NewTracker(WithScoreFunc(func(model.Candidate) float64 { return 1.0 }))
			c := fromSource("some-blog", 0.0)
			trust := tr.GetSource("some-blog").TrustFactor()
			So(tr.ScoreCandidate(c), ShouldAlmostEqual, min(1.0, 0.70+0.20*trust), 0.0001)
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent intake workers", t, func() {
		tr := NewTracker()
		done := make(chan struct{})
		for g := 0; g < 8; g++ {
			go func(g int) {
				defer func() { done <- struct{}{} }()
				for i := 0; i < 50; i++ {
					tr.RecordItem(fromSource(fmt.Sprintf("src-%d", g%4), 0.5))
				}
			}(g)
		}
		for g := 0; g < 8; g++ {
			<-done
		}

		Convey("Then every record lands", func() {
			total := int64(0)
			for _, sr := range tr.Snapshot() {
				total += sr.TotalItemsSeen
			}
			So(total, ShouldEqual, 400)
		})
	})
}
