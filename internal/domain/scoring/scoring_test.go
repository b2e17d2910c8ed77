package scoring_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	scoring "github.com/kestrel-intel/kestrel/internal/domain/scoring"
)

func TestInMemoryScorer(t *testing.T) {
	Convey("Given a preference scorer with defaults", t, func() {
		s := scoring.NewInMemoryScorer()

		Convey("When the request carries no topic profile", func() {
			res, err := s.Score(context.Background(), scoring.Input{
				CandidateID: "c1",
				Topic:       "markets",
				BaseFit:     0.7,
			})

			Convey("Then the baseline fit is untouched", func() {
				So(err, ShouldBeNil)
				So(res.CandidateID, ShouldEqual, "c1")
				So(res.PreferenceFit, ShouldAlmostEqual, 0.7, 0.0001)
			})
		})

		Convey("When the profile weights the candidate's topic", func() {
			res, err := s.Score(context.Background(), scoring.Input{
				CandidateID:  "c1",
				Topic:        "markets",
				BaseFit:      0.5,
				TopicWeights: map[string]float64{"markets": 1.0},
			})

			Convey("Then the fit is pulled toward the weight", func() {
				So(err, ShouldBeNil)
				// 0.4*0.5 + 0.6*1.0
				So(res.PreferenceFit, ShouldAlmostEqual, 0.8, 0.0001)
			})
		})

		Convey("When the profile omits the candidate's topic", func() {
			res, err := s.Score(context.Background(), scoring.Input{
				CandidateID:  "c1",
				Topic:        "sports",
				BaseFit:      0.9,
				TopicWeights: map[string]float64{"markets": 1.0},
			})

			Convey("Then the default weight applies", func() {
				So(err, ShouldBeNil)
				// 0.4*0.9 + 0.6*0.5
				So(res.PreferenceFit, ShouldAlmostEqual, 0.66, 0.0001)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := s.Score(ctx, scoring.Input{CandidateID: "c1"})

			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given custom scorer options", t, func() {
		Convey("A zero blend factor keeps the baseline", func() {
			s := scoring.NewInMemoryScorer(scoring.WithBlendFactor(0))
			res, err := s.Score(context.Background(), scoring.Input{
				CandidateID:  "c1",
				Topic:        "tech",
				BaseFit:      0.4,
				TopicWeights: map[string]float64{"tech": 1.0},
			})
			So(err, ShouldBeNil)
			So(res.PreferenceFit, ShouldAlmostEqual, 0.4, 0.0001)
		})

		Convey("A custom default weight shifts unprofiled topics", func() {
			s := scoring.NewInMemoryScorer(scoring.WithDefaultTopicWeight(0.2))
			res, err := s.Score(context.Background(), scoring.Input{
				CandidateID:  "c1",
				Topic:        "sports",
				BaseFit:      0.5,
				TopicWeights: map[string]float64{"markets": 0.9},
			})
			So(err, ShouldBeNil)
			// 0.4*0.5 + 0.6*0.2
			So(res.PreferenceFit, ShouldAlmostEqual, 0.32, 0.0001)
		})
	})
}
