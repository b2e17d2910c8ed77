package corroboration

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

func story(id, source, topic, title, summary string) *model.Candidate {
	return &model.Candidate{
		ID:      id,
		Source:  source,
		Topic:   topic,
		Title:   title,
		Summary: summary,
		URL:     "https://news.test/" + id,
	}
}

func TestDetect(t *testing.T) {
	Convey("Given a corroboration detector", t, func() {
		d := NewDetector()

		Convey("When two sources run near-identical headlines", func() {
			pool := []*model.Candidate{
				story("a", "reuters", "markets", "European markets rally strongly today", ""),
				story("b", "bbc", "markets", "European markets rally strongly overnight", ""),
			}
			pairs := d.Detect(pool)

			Convey("Then both items corroborate each other", func() {
				So(pool[0].CorroboratedBy, ShouldResemble, []string{"bbc"})
				So(pool[1].CorroboratedBy, ShouldResemble, []string{"reuters"})
			})

			Convey("And the source pair is reported once, ordered", func() {
				So(pairs, ShouldResemble, []SourcePair{{A: "bbc", B: "reuters"}})
			})
		})

		Convey("When the same source repeats its own headline", func() {
			pool := []*model.Candidate{
				story("a", "reuters", "markets", "European markets rally strongly today", ""),
				story("b", "reuters", "markets", "European markets rally strongly overnight", ""),
			}
			pairs := d.Detect(pool)

			Convey("Then nothing corroborates", func() {
				So(pool[0].CorroboratedBy, ShouldBeEmpty)
				So(pool[1].CorroboratedBy, ShouldBeEmpty)
				So(pairs, ShouldBeEmpty)
			})
		})

		Convey("When two outlets word the same story differently", func() {
			reuters := story("a", "reuters", "economy",
				"Fed raises rates",
				"central bank raises benchmark interest rates citing inflation policy")
			ap := story("b", "ap", "economy",
				"Federal Reserve hikes interest rates",
				"central bank raises benchmark interest rates citing inflation policy")
			web := story("c", "web", "economy",
				"Unrelated crypto speculation",
				"meme coin chatter gains volume")
			pool := []*model.Candidate{reuters, ap, web}
			d.Detect(pool)

			Convey("Then overlap in wording still links them", func() {
				So(reuters.CorroboratedBy, ShouldContain, "ap")
				So(ap.CorroboratedBy, ShouldContain, "reuters")
			})

			Convey("And the unrelated item never backs them", func() {
				So(reuters.CorroboratedBy, ShouldNotContain, "web")
				So(ap.CorroboratedBy, ShouldNotContain, "web")
			})
		})

		Convey("When a topic is covered broadly", func() {
			pool := []*model.Candidate{
				story("a", "reuters", "energy", "Pipeline maintenance schedule announced", ""),
				story("b", "bbc", "energy", "Refinery output figures released quarterly", ""),
				story("c", "ft", "energy", "Grid operator posts demand outlook", ""),
			}
			d.Detect(pool)

			Convey("Then uncorroborated items inherit topic-level backing", func() {
				So(len(pool[0].CorroboratedBy), ShouldEqual, 2)
				So(pool[0].CorroboratedBy, ShouldNotContain, "reuters")
			})
		})

		Convey("When placeholder items sit alongside real ones", func() {
			real := story("a", "reuters", "economy",
				"Fed raises rates",
				"central bank raises benchmark interest rates citing inflation policy")
			fake := story("b", "web", "economy",
				"Fed raises rates summary note",
				"central bank raises benchmark interest rates citing inflation policy")
			fake.URL = "https://example.com/fake"
			d.Detect([]*model.Candidate{real, fake})

			Convey("Then wording overlap with a placeholder does not count", func() {
				So(real.CorroboratedBy, ShouldBeEmpty)
			})
		})

		Convey("When corroborators accumulate", func() {
			c := story("a", "reuters", "x", "", "")
			addCorroboration(c, "bbc", "ap")
			addCorroboration(c, "ap", "ft", "reuters")

			Convey("Then the list stays sorted, unique, and self-free", func() {
				So(c.CorroboratedBy, ShouldResemble, []string{"ap", "bbc", "ft"})
			})
		})
	})
}

func TestWords(t *testing.T) {
	Convey("Given the word helpers", t, func() {
		Convey("titleKey hashes the leading significant words", func() {
			So(titleKey("European markets rally strongly today after sharp gains"),
				ShouldEqual, titleKey("European markets rally strongly today after overnight session"))
			So(titleKey("European markets rally"),
				ShouldNotEqual, titleKey("Asian markets rally"))
		})

		Convey("significantWords drops stopwords and short tokens", func() {
			words := significantWords("The bank raises its key rates")
			So(words, ShouldContainKey, "bank")
			So(words, ShouldContainKey, "raises")
			So(words, ShouldContainKey, "rates")
			So(words, ShouldNotContainKey, "the")
		})

		Convey("jaccard is symmetric and bounded", func() {
			a := significantWords("central bank raises rates")
			b := significantWords("central bank cuts rates")
			So(jaccard(a, b), ShouldAlmostEqual, jaccard(b, a), 0.0001)
			So(jaccard(a, b), ShouldBeBetween, 0.0, 1.0)
			So(jaccard(a, a), ShouldAlmostEqual, 1.0, 0.0001)
		})
	})
}
