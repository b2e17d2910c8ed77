package georisk

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func item(id, title, summary string, composite float64) *model.Candidate {
	return &model.Candidate{
		ID:               id,
		Title:            title,
		Summary:          summary,
		EvidenceScore:    composite,
		NoveltyScore:     composite,
		PreferenceFit:    composite,
		PredictionSignal: composite,
	}
}

func TestAssess(t *testing.T) {
	Convey("Given a fresh geo-risk index", t, func() {
		idx := NewIndex()

		Convey("When an item mentions a region keyword", func() {
			pool := []*model.Candidate{
				item("a", "Taiwan strait patrols increase", "naval activity near taipei", 0.5),
			}
			entries := idx.Assess(pool)

			Convey("Then it is attributed to that region", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Region, ShouldEqual, "east_asia")
				So(pool[0].Regions, ShouldResemble, []string{"east_asia"})
			})

			Convey("And the first reading is measured against the prior", func() {
				So(entries[0].PreviousLevel, ShouldAlmostEqual, 0.3, 0.0001)
			})
		})

		Convey("When an item matches no region", func() {
			pool := []*model.Candidate{
				item("a", "commodity prices drift lower", "broad market softness", 0.4),
			}
			entries := idx.Assess(pool)

			So(entries[0].Region, ShouldEqual, RegionGlobal)
		})

		Convey("When invasion language outweighs ceasefire language", func() {
			escalating := []*model.Candidate{
				item("a", "Russia masses troops for offensive", "columns moving toward ukraine border", 0.6),
				item("b", "Missile strike reported near Kyiv", "air defense active over ukraine", 0.6),
			}
			calming := []*model.Candidate{
				item("c", "Ceasefire talks resume", "negotiation restarts between israel and lebanon mediators", 0.6),
			}
			escEntries := idx.Assess(escalating)
			calmEntries := idx.Assess(calming)

			Convey("Then the escalating region reads riskier than the calming one", func() {
				So(escEntries[0].Region, ShouldEqual, "eastern_europe")
				So(calmEntries[0].Region, ShouldEqual, "middle_east")
				So(escEntries[0].RiskLevel, ShouldBeGreaterThan, calmEntries[0].RiskLevel)
			})
		})

		Convey("When the same pool is assessed twice", func() {
			pool := []*model.Candidate{
				item("a", "India reviews trade policy", "delhi announces tariff review", 0.5),
			}
			first := idx.Assess(pool)
			second := idx.Assess(pool)

			Convey("Then the repeat shows no escalation delta", func() {
				So(second[0].RiskLevel, ShouldAlmostEqual, first[0].RiskLevel, 0.0001)
				So(second[0].EscalationDelta, ShouldAlmostEqual, 0, 0.0001)
				So(second[0].IsEscalating(), ShouldBeFalse)
			})
		})

		Convey("When urgency rises on a region", func() {
			calm := []*model.Candidate{
				item("a", "Brazil announces budget plan", "fiscal outline presented", 0.5),
			}
			urgent := []*model.Candidate{
				item("b", "Brazil announces budget plan", "fiscal outline presented", 0.5),
			}
			urgent[0].Urgency = model.UrgencyCritical
			calmEntries := idx.Assess(calm)
			urgentEntries := idx.Assess(urgent)

			Convey("Then the urgency factor lifts the level and marks escalation", func() {
				So(urgentEntries[0].RiskLevel-calmEntries[0].RiskLevel, ShouldAlmostEqual, 0.3, 0.0001)
				So(urgentEntries[0].IsEscalating(), ShouldBeTrue)
			})
		})

		Convey("When many items pile onto one region", func() {
			pool := make([]*model.Candidate, 0, 12)
			for i := 0; i < 12; i++ {
				pool = append(pool, item("n", "Kenya infrastructure program detailed", "ports and rail expansion", 0.5))
			}
			entries := idx.Assess(pool)

			Convey("Then the volume contribution is capped and drivers name the top items", func() {
				// 0.4*0.5 + min(0.15, 0.02*12)
				So(entries[0].RiskLevel, ShouldAlmostEqual, 0.35, 0.0001)
				So(entries[0].Drivers, ShouldHaveLength, 3)
				for _, d := range entries[0].Drivers {
					So(d, ShouldStartWith, "Activity: ")
				}
			})
		})

		Convey("When three outlets cover one region with mixed signals", func() {
			hot := item("a", "Missile strike on Kyiv", "explosions reported across ukraine", 0.9)
			hot.Source = "reuters"
			cool := item("b", "Ceasefire talks in Moscow stall", "mediators press both sides in russia", 0.7)
			cool.Source = "bbc"
			quiet := item("c", "Ukraine grain exports resume", "shipping lanes reopen", 0.5)
			quiet.Source = "afp"
			entries := idx.Assess([]*model.Candidate{hot, cool, quiet})

			Convey("Then drivers lead with the outlet count and label each top item", func() {
				So(entries[0].Region, ShouldEqual, "eastern_europe")
				So(entries[0].Drivers, ShouldResemble, []string{
					"Multi-source coverage (3 outlets)",
					"Escalation signal: Missile strike on Kyiv",
					"De-escalation signal: Ceasefire talks in Moscow stall",
					"Activity: Ukraine grain exports resume",
				})
			})
		})

		Convey("When a driver title runs long", func() {
			long := "Kenya announces a sweeping multi-decade infrastructure overhaul spanning ports"
			entries := idx.Assess([]*model.Candidate{
				item("a", long, "rail and road expansion", 0.5),
			})

			Convey("Then the title is cut at sixty characters", func() {
				So(entries[0].Drivers, ShouldHaveLength, 1)
				So(entries[0].Drivers[0], ShouldEqual, "Activity: "+long[:60])
			})
		})
	})
}

func TestKeywordAccounting(t *testing.T) {
	Convey("Given pools with different escalation keyword counts", t, func() {
		idx := NewIndex()
		one := idx.Assess([]*model.Candidate{
			item("a", "Sanctions announced", "pressure grows on moscow", 0.5),
		})
		three := idx.Assess([]*model.Candidate{
			item("b", "Invasion offensive begins", "troops cross border near moscow", 0.5),
		})

		Convey("Then every keyword hit moves the level by one step", func() {
			So(one[0].RiskLevel, ShouldAlmostEqual, 0.25, 0.0001)
			So(three[0].RiskLevel, ShouldAlmostEqual, 0.31, 0.0001)
		})
	})

	Convey("Given a title whose words merely contain a keyword", t, func() {
		idx := NewIndex()
		entries := idx.Assess([]*model.Candidate{
			item("a", "Kenya weather warning issued", "storm alerts along the coast", 0.5),
		})

		Convey("Then no escalation step is charged for the substring", func() {
			// 0.4*0.5 + 0.02 volume, nothing for "warning"
			So(entries[0].RiskLevel, ShouldAlmostEqual, 0.22, 0.0001)
		})
	})
}

func TestIndexOptions(t *testing.T) {
	Convey("Given an index with custom weights and driver cap", t, func() {
		idx := NewIndex(
			WithRiskWeights(RiskWeights{Base: 0.5, VolumePerItem: 0.05, VolumeCap: 0.2}),
			WithUrgencyFactors(UrgencyFactors{Critical: 0.5}),
			WithMaxDrivers(1),
		)

		Convey("When a critical item is assessed", func() {
			c := item("a", "Chile mining output rises", "copper shipments expand", 0.5)
			c.Urgency = model.UrgencyCritical
			entries := idx.Assess([]*model.Candidate{c})

			Convey("Then the injected weights drive the level", func() {
				// 0.5*0.5 + 0.5 + 0.05
				So(entries[0].RiskLevel, ShouldAlmostEqual, 0.80, 0.0001)
			})

			Convey("And the driver list honors the cap", func() {
				So(entries[0].Drivers, ShouldHaveLength, 1)
			})
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Snapshot reflects the last assessed level per region", t, func() {
		idx := NewIndex()
		idx.Assess([]*model.Candidate{
			item("a", "Germany energy policy shifts", "berlin and nato coordination", 0.5),
		})
		snap := idx.Snapshot()
		So(snap, ShouldContainKey, "western_europe")
		So(snap["western_europe"], ShouldBeGreaterThan, 0)
	})
}
