package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func TestCompositeScore(t *testing.T) {
	Convey("Given the default signal blend", t, func() {
		Convey("The weights sum to one", func() {
			w := model.DefaultCompositeWeights()
			So(w.Evidence+w.Novelty+w.Preference+w.Prediction, ShouldAlmostEqual, 1.0, 0.0001)
		})

		Convey("Uniform signals score their own value", func() {
			c := model.Candidate{
				EvidenceScore:    0.6,
				NoveltyScore:     0.6,
				PreferenceFit:    0.6,
				PredictionSignal: 0.6,
			}
			So(c.CompositeScore(), ShouldAlmostEqual, 0.6, 0.0001)
		})

		Convey("The blend follows the stated weights", func() {
			c := model.Candidate{
				EvidenceScore:    1.0,
				NoveltyScore:     0.0,
				PreferenceFit:    0.5,
				PredictionSignal: 0.2,
			}
			// 0.3*1 + 0.25*0 + 0.3*0.5 + 0.15*0.2
			So(c.CompositeScore(), ShouldAlmostEqual, 0.48, 0.0001)
		})

		Convey("Valid signals keep the score inside [0,1]", func() {
			zero := model.Candidate{}
			full := model.Candidate{
				EvidenceScore:    1,
				NoveltyScore:     1,
				PreferenceFit:    1,
				PredictionSignal: 1,
			}
			So(zero.CompositeScore(), ShouldEqual, 0)
			So(full.CompositeScore(), ShouldAlmostEqual, 1.0, 0.0001)
		})
	})
}

func TestUrgencyRanking(t *testing.T) {
	Convey("Given urgency levels", t, func() {
		Convey("Ranks order least to most severe", func() {
			So(model.UrgencyRoutine.Rank(), ShouldBeLessThan, model.UrgencyElevated.Rank())
			So(model.UrgencyElevated.Rank(), ShouldBeLessThan, model.UrgencyBreaking.Rank())
			So(model.UrgencyBreaking.Rank(), ShouldBeLessThan, model.UrgencyCritical.Rank())
		})

		Convey("An unknown value never outranks a real one", func() {
			So(model.Urgency("").Rank(), ShouldBeLessThan, model.UrgencyRoutine.Rank())
		})

		Convey("MaxUrgency picks the most severe", func() {
			So(model.MaxUrgency(model.UrgencyRoutine, model.UrgencyBreaking, model.UrgencyElevated),
				ShouldEqual, model.UrgencyBreaking)
			So(model.MaxUrgency(), ShouldEqual, model.UrgencyRoutine)
		})
	})
}

func TestLifecycleRanking(t *testing.T) {
	Convey("Given lifecycle stages", t, func() {
		Convey("Breaking outranks developing outranks ongoing", func() {
			So(model.LifecycleBreaking.Rank(), ShouldBeGreaterThan, model.LifecycleDeveloping.Rank())
			So(model.LifecycleDeveloping.Rank(), ShouldBeGreaterThan, model.LifecycleOngoing.Rank())
			So(model.LifecycleOngoing.Rank(), ShouldBeGreaterThan, model.LifecycleWaning.Rank())
			So(model.LifecycleWaning.Rank(), ShouldBeGreaterThan, model.LifecycleResolved.Rank())
		})

		Convey("MaxLifecycle picks the most severe", func() {
			So(model.MaxLifecycle(model.LifecycleWaning, model.LifecycleDeveloping),
				ShouldEqual, model.LifecycleDeveloping)
		})
	})
}

func TestTrustFactor(t *testing.T) {
	Convey("Given source reliability state", t, func() {
		s := model.SourceReliability{
			ReliabilityScore:   0.8,
			HistoricalAccuracy: 0.6,
			CorroborationRate:  0.5,
		}

		Convey("Trust blends the three components", func() {
			// 0.5*0.8 + 0.3*0.6 + 0.2*0.5
			So(s.TrustFactor(), ShouldAlmostEqual, 0.68, 0.0001)
		})
	})
}
