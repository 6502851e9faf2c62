package mangadex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mangarank/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

var ErrTagFilterNotFound = errors.New("the genre filter control is missing from the search page")

// Tags resolves the tag names the search endpoint accepts. Keys are
// lowercased tag names, values are the opaque identifiers expected by the
// tags_inc/tags_exc query parameters. Costs one fetch, resolve once per run.
func (c *Client) Tags(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Tags")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %q from search page", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse search page html")
		return nil, err
	}

	wrapper := doc.Find("div.genres-filter-wrapper")
	if wrapper.Length() == 0 {
		span.SetStatus(codes.Error, ErrTagFilterNotFound.Error())
		return nil, ErrTagFilterNotFound
	}

	tags := map[string]string{}
	wrapper.Find("optgroup option").Each(func(_ int, option *goquery.Selection) {
		value, ok := option.Attr("value")
		name := htmlutil.NormalizeSpace(option.Text())
		if !ok || name == "" {
			return
		}
		tags[strings.ToLower(name)] = value
	})
	return tags, nil
}
