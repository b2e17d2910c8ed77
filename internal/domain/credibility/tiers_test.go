package credibility

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTierTable(t *testing.T) {
	Convey("Given the default tier table", t, func() {
		tt := NewTierTable(nil, nil, 0)

		Convey("Wire agencies sit in tier 1", func() {
			So(tt.TierName("reuters"), ShouldEqual, "tier_1")
			So(tt.BaseReliability("reuters"), ShouldAlmostEqual, 0.85, 0.0001)
			So(tt.IsKnown("reuters"), ShouldBeTrue)
		})

		Convey("Social platforms sit in tier 2", func() {
			So(tt.TierName("reddit"), ShouldEqual, "tier_2")
			So(tt.BaseReliability("reddit"), ShouldAlmostEqual, 0.55, 0.0001)
		})

		Convey("Unlisted sources fall back to unknown", func() {
			So(tt.TierName("some-blog"), ShouldEqual, TierUnknown)
			So(tt.BaseReliability("some-blog"), ShouldAlmostEqual, 0.50, 0.0001)
			So(tt.IsKnown("some-blog"), ShouldBeFalse)
			So(tt.Bias("some-blog"), ShouldEqual, "unrated")
		})

		Convey("Bias profiles resolve for known sources", func() {
			So(tt.Bias("guardian"), ShouldEqual, "left-leaning")
			So(tt.Bias("arxiv"), ShouldEqual, "academic")
		})

		Convey("Tier members come back sorted", func() {
			members := tt.SourcesInTier("tier_1")
			So(members, ShouldResemble, []string{"ap", "bbc", "ft", "guardian", "reuters"})
		})
	})

	Convey("Given a custom tier table", t, func() {
		tt := NewTierTable(map[string]Tier{
			"primary": {Sources: []string{"wire-x"}, BaseReliability: 0.9},
		}, map[string]string{"wire-x": "center"}, 0.4)

		Convey("Custom tiers and the custom unknown base apply", func() {
			So(tt.TierName("wire-x"), ShouldEqual, "primary")
			So(tt.BaseReliability("wire-x"), ShouldAlmostEqual, 0.9, 0.0001)
			So(tt.BaseReliability("other"), ShouldAlmostEqual, 0.4, 0.0001)
		})

		Convey("Default tier names are absent", func() {
			So(tt.TierName("reuters"), ShouldEqual, TierUnknown)
		})
	})
}
