package commands

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"mangarank/lib/ranking"
	"mangarank/lib/scrapers/mangadex"

	"github.com/spf13/cobra"
)

var (
	pages         *int
	minimumRating *float64
	matchTags     *[]string
	excludeTags   *[]string
	format        *string
)

func init() {
	pages = rankCmd.Flags().IntP("pages", "p", 10, "Number of search result pages to crawl.")
	minimumRating = rankCmd.Flags().Float64("minimum-rating", 8.0, "Minimum adjusted rating (0.0 to 10.0). Entries below it are not listed.")
	matchTags = rankCmd.Flags().StringSliceP("match-tags", "m", nil, "Tags which results must match. Omit to match any.")
	excludeTags = rankCmd.Flags().StringSliceP("exclude-tags", "x", nil, "Tags which results must not match.")
	format = rankCmd.Flags().StringP("format", "f", "wide", "Output format, one of simple, wide, json, yaml, csv.")
	rootCmd.AddCommand(rankCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank [-p <pages>] [-m <tag>...] [-x <tag>...] [-f <format>]",
	Short: "Crawls search results and prints them ranked by adjusted rating.",
	Run: func(cmd *cobra.Command, args []string) {
		if *pages <= 0 {
			fatal("invalid flag", fmt.Errorf("--pages must be positive, got %d", *pages))
		}
		if *minimumRating < 0 || *minimumRating > 10 {
			fatal("invalid flag", fmt.Errorf("--minimum-rating must be between 0.0 and 10.0, got %g", *minimumRating))
		}
		if !slices.Contains(formats, *format) {
			fatal("invalid flag", fmt.Errorf("unknown output format %q", *format))
		}

		client := createClient()

		var included, excluded []string
		if len(*matchTags)+len(*excludeTags) > 0 {
			tags, err := client.Tags(cmd.Context())
			if err != nil {
				fatal("failed to resolve tags", err)
			}
			included = selectTags(tags, *matchTags)
			excluded = selectTags(tags, *excludeTags)
		}

		results, err := client.Search(cmd.Context(), mangadex.SearchOptions{
			Pages:        *pages,
			IncludedTags: included,
			ExcludedTags: excluded,
		})
		if err != nil {
			fatal("search failed", err)
		}

		entries := ranking.Rank(results, *minimumRating)
		err = render(os.Stdout, *format, newRows(entries, client))
		if err != nil {
			fatal("failed to write output", err)
		}
	},
}

func selectTags(known map[string]string, names []string) []string {
	var ids []string
	for _, name := range names {
		id, ok := known[strings.ToLower(name)]
		if !ok {
			fatal("invalid flag", fmt.Errorf("unknown tag %q, see `mangarank tags` for the known ones", name))
		}
		ids = append(ids, id)
	}
	return ids
}
