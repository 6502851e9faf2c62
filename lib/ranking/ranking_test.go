package ranking

import (
	"testing"

	"mangarank/lib/scrapers/mangadex"

	"github.com/stretchr/testify/require"
)

func TestAdjustedRatingGoldens(t *testing.T) {
	// zero votes leaves only the halved raw rating
	require.InDelta(t, 4.00, AdjustedRating(8.0, 0), 1e-9)
	// the confidence term saturates at 5 for heavily voted entries
	require.InDelta(t, 9.00, AdjustedRating(8.0, 100000), 1e-9)
	require.InDelta(t, 8.50, AdjustedRating(8.0, 25), 1e-9)
}

func TestAdjustedRatingMonotonicInVotes(t *testing.T) {
	prev := AdjustedRating(7.3, 0)
	for votes := 1; votes <= 5000; votes++ {
		score := AdjustedRating(7.3, votes)
		require.GreaterOrEqual(t, score, prev, "votes %d", votes)
		prev = score
	}
}

func TestAdjustedRatingMonotonicInRating(t *testing.T) {
	prev := AdjustedRating(0, 137)
	for rating := 0.5; rating <= 10; rating += 0.5 {
		score := AdjustedRating(rating, 137)
		require.Greater(t, score, prev, "rating %g", rating)
		prev = score
	}
}

func TestRank(t *testing.T) {
	manga := []mangadex.Manga{
		{Path: "/title/1/a", Name: "A", Rating: 8, Votes: 0},      // 4.00
		{Path: "/title/2/b", Name: "B", Rating: 10, Votes: 1e6},   // 10.00
		{Path: "/title/3/c", Name: "C", Rating: 8, Votes: 100000}, // 9.00
		{Path: "/title/4/d", Name: "D", Rating: 8, Votes: 0},      // 4.00, tied with A
	}

	ranked := Rank(manga, 0)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i-1].AdjustedRating, ranked[i].AdjustedRating)
	}
	require.Equal(t, "B", ranked[0].Manga.Name)
	require.Equal(t, "C", ranked[1].Manga.Name)
	// ties keep insertion order
	require.Equal(t, "A", ranked[2].Manga.Name)
	require.Equal(t, "D", ranked[3].Manga.Name)
}

func TestRankMinimumCutoff(t *testing.T) {
	manga := []mangadex.Manga{
		{Path: "/title/1/a", Name: "A", Rating: 8, Votes: 0},
		{Path: "/title/2/b", Name: "B", Rating: 10, Votes: 1e6},
		{Path: "/title/3/c", Name: "C", Rating: 8, Votes: 100000},
	}

	ranked := Rank(manga, 9.0)
	require.Len(t, ranked, 2)
	require.Equal(t, "B", ranked[0].Manga.Name)
	require.Equal(t, "C", ranked[1].Manga.Name)
	for _, e := range ranked {
		require.GreaterOrEqual(t, e.AdjustedRating, 9.0)
	}
}
