package ranking

import (
	"math"
	"slices"

	"mangarank/lib/scrapers/mangadex"
)

// ReferenceRating is the rating at which the vote-confidence term is exactly
// half converged. 7.5 is the median rating of relatively SFW data queried in
// December 2018 (the mean is close at 7.22). The blending approach comes from
// https://math.stackexchange.com/a/942965.
const ReferenceRating = 7.5

// AdjustedRating blends the raw rating, scaled to a 0-5 contribution, with a
// confidence term that approaches 5 as the vote count grows. Sparsely voted
// entries regress toward a moderate score while heavily voted ones are
// dominated by their raw rating. Rounded to 2 decimal places.
func AdjustedRating(rating float64, votes int) float64 {
	k := -ReferenceRating / math.Log(0.5)
	adjusted := rating/2 + 5*(1-math.Exp(-float64(votes)/k))
	return math.Round(adjusted*100) / 100
}

type Entry struct {
	Manga          mangadex.Manga
	AdjustedRating float64
}

// Rank orders manga by adjusted rating descending and drops entries scoring
// below the minimum. Ties keep their input order, which for search results
// is the views-descending crawl order.
func Rank(manga []mangadex.Manga, minimum float64) []Entry {
	entries := make([]Entry, 0, len(manga))
	for _, m := range manga {
		entries = append(entries, Entry{
			Manga:          m,
			AdjustedRating: AdjustedRating(m.Rating, m.Votes),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.AdjustedRating > b.AdjustedRating {
			return -1
		}
		if a.AdjustedRating < b.AdjustedRating {
			return 1
		}
		return 0
	})

	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.AdjustedRating >= minimum {
			ranked = append(ranked, e)
		}
	}
	return ranked
}
