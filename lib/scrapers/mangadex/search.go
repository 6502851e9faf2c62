package mangadex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"mangarank/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Manga is one row of the search results.
type Manga struct {
	Path    string
	Name    string
	Rating  float64
	Votes   int
	Views   int
	Follows int
}

// sort mode 7 orders results by views descending, so earlier pages hold the
// more popular entries
const sortViewsDescending = "7"

// cleaned titles equal to this belong to the endpoint's health check entry
// (https://mangadex.org/title/47/test)
const sentinelTitle = "Test"

var decorativeSuffixes = []string{
	"[Official Colored]",
	"(Anthology)",
	"(Doujinshi)",
	"(Web Comic)",
	"(Webcomic)",
}

// CleanTitle strips the known decorative suffixes from the end of a title,
// case-insensitively, and trims the leftover whitespace. Idempotent.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for changed := true; changed; {
		changed = false
		for _, suffix := range decorativeSuffixes {
			if len(title) < len(suffix) {
				continue
			}
			if strings.EqualFold(title[len(title)-len(suffix):], suffix) {
				title = strings.TrimSpace(title[:len(title)-len(suffix)])
				changed = true
			}
		}
	}
	return title
}

type SearchOptions struct {
	// Pages is the number of result pages to crawl. The crawl stops earlier
	// if the endpoint runs out of results.
	Pages int
	// opaque tag identifiers resolved through Tags
	IncludedTags []string
	ExcludedTags []string
}

// Search crawls result pages in order and collects their rows, dropping
// duplicate paths. Pages are ordered by popularity so the first occurrence
// of a path holds the authoritative stats for it.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]Manga, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	// queries cannot run concurrently, the endpoint rate limits per client
	seen := map[string]bool{}
	var collection []Manga
	for page := 0; page < opts.Pages; page++ {
		body, err := c.SearchPage(ctx, page, opts.IncludedTags, opts.ExcludedTags)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch search page")
			return nil, err
		}

		items, err := extractManga(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to extract search results")
			return nil, err
		}

		// an empty result set signals the end of pagination
		if len(items) == 0 {
			slog.DebugContext(ctx, "no further results", "page", page)
			break
		}

		for _, m := range items {
			if seen[m.Path] {
				continue
			}
			seen[m.Path] = true
			collection = append(collection, m)
		}
		slog.DebugContext(ctx, "crawled search page", "page", page, "total", len(collection))
	}

	return collection, nil
}

// SearchPage fetches a single page of search results and returns its body.
// The page index is 0-based.
func (c *Client) SearchPage(ctx context.Context, page int, included, excluded []string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:SearchPage")
	defer span.End()

	req := c.Http.R().
		SetContext(ctx).
		SetQueryParam("s", sortViewsDescending).
		SetQueryParam("p", strconv.Itoa(page))
	if len(included) > 0 {
		req.SetQueryParam("tags_inc", formatTagList(included))
	}
	if len(excluded) > 0 {
		req.SetQueryParam("tags_exc", formatTagList(excluded))
	}

	res, err := req.Get("/search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %q from search page %d", res.Status(), page)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return res.String(), nil
}

func formatTagList(tags []string) string {
	sorted := slices.Clone(tags)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

var ErrMissingIndicator = errors.New("search row is missing an expected indicator")

func extractManga(body string) ([]Manga, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var items []Manga
	var rowErr error
	doc.Find(`div#content[role="main"] div.border-bottom`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		m, ok, err := parseRow(row)
		if err != nil {
			rowErr = err
			return false
		}
		if ok {
			items = append(items, m)
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return items, nil
}

func parseRow(row *goquery.Selection) (Manga, bool, error) {
	title := htmlutil.NormalizeSpace(row.Find("a.manga_title").First().Text())
	// placeholder rows carry no title
	if title == "" {
		return Manga{}, false, nil
	}
	title = CleanTitle(title)

	path, ok := row.Find("a").First().Attr("href")
	if !ok || path == "" {
		return Manga{}, false, fmt.Errorf("%w: link target", ErrMissingIndicator)
	}

	if row.Find(`span[title="Rating"]`).Length() == 0 {
		return Manga{}, false, fmt.Errorf("%w: rating", ErrMissingIndicator)
	}
	// the "Rating" label marks the user's own rating. The community rating
	// lives in the element whose title attribute carries the vote count,
	// in the format "<n> Votes".
	community := row.Find(`[title$="Votes"]`).First()
	if community.Length() == 0 {
		return Manga{}, false, fmt.Errorf("%w: votes", ErrMissingIndicator)
	}
	rating, err := strconv.ParseFloat(htmlutil.NormalizeSpace(community.Text()), 64)
	if err != nil {
		return Manga{}, false, fmt.Errorf("parse community rating: %w", err)
	}
	votesLabel := community.AttrOr("title", "")
	fields := strings.Fields(votesLabel)
	if len(fields) < 2 {
		return Manga{}, false, fmt.Errorf("%w: vote count", ErrMissingIndicator)
	}
	votes, err := parseGroupedInt(fields[0])
	if err != nil {
		return Manga{}, false, fmt.Errorf("parse vote count: %w", err)
	}

	follows, err := indicatorCount(row, "Follows")
	if err != nil {
		return Manga{}, false, err
	}
	views, err := indicatorCount(row, "Views")
	if err != nil {
		return Manga{}, false, err
	}

	if title == sentinelTitle {
		return Manga{}, false, nil
	}

	return Manga{
		Path:    path,
		Name:    title,
		Rating:  rating,
		Votes:   votes,
		Views:   views,
		Follows: follows,
	}, true, nil
}

// indicatorCount locates the labeled indicator element and parses the count
// from the text adjacent to it.
func indicatorCount(row *goquery.Selection, label string) (int, error) {
	indicator := row.Find(fmt.Sprintf("span[title=%q]", label)).First()
	if indicator.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingIndicator, strings.ToLower(label))
	}
	text := htmlutil.AdjacentText(indicator)
	if text == "" {
		return 0, fmt.Errorf("%w: %s count", ErrMissingIndicator, strings.ToLower(label))
	}
	count, err := parseGroupedInt(text)
	if err != nil {
		return 0, fmt.Errorf("parse %s count: %w", strings.ToLower(label), err)
	}
	return count, nil
}

// parseGroupedInt parses an integer that may use commas for digit grouping.
func parseGroupedInt(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
