package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"mangarank/lib/ranking"
	"mangarank/lib/scrapers/mangadex"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

var formats = []string{"simple", "wide", "json", "yaml", "csv"}

type row struct {
	Name           string  `json:"name" yaml:"name"`
	Url            string  `json:"url" yaml:"url"`
	Rating         float64 `json:"rating" yaml:"rating"`
	AdjustedRating float64 `json:"adjusted_rating" yaml:"adjusted_rating"`
	Votes          int     `json:"votes" yaml:"votes"`
	Views          int     `json:"views" yaml:"views"`
	Follows        int     `json:"follows" yaml:"follows"`
}

func newRows(entries []ranking.Entry, client *mangadex.Client) []row {
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, row{
			Name:           e.Manga.Name,
			Url:            client.AbsoluteUrl(e.Manga.Path),
			Rating:         e.Manga.Rating,
			AdjustedRating: e.AdjustedRating,
			Votes:          e.Manga.Votes,
			Views:          e.Manga.Views,
			Follows:        e.Manga.Follows,
		})
	}
	return rows
}

func render(w io.Writer, format string, rows []row) error {
	switch format {
	case "simple":
		return renderSimple(w, rows)
	case "wide":
		return renderWide(w, rows)
	case "json":
		return json.NewEncoder(w).Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		return renderCsv(w, rows)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func renderSimple(w io.Writer, rows []row) error {
	for _, r := range rows {
		_, err := fmt.Fprintln(w, r.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

func renderWide(w io.Writer, rows []row) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	t.AppendHeader(table.Row{"#", "Name", "Adjusted", "Rating", "Votes", "Views", "Follows"})
	for i, r := range rows {
		t.AppendRow(table.Row{
			i + 1,
			r.Name,
			strconv.FormatFloat(r.AdjustedRating, 'f', 2, 64),
			strconv.FormatFloat(r.Rating, 'f', 2, 64),
			r.Votes,
			r.Views,
			r.Follows,
		})
	}
	t.Render()
	return nil
}

var csvHeader = []string{"name", "url", "rating", "adjusted_rating", "votes", "views", "follows"}

func renderCsv(w io.Writer, rows []row) error {
	cw := csv.NewWriter(w)
	err := cw.Write(csvHeader)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write([]string{
			r.Name,
			r.Url,
			strconv.FormatFloat(r.Rating, 'f', 2, 64),
			strconv.FormatFloat(r.AdjustedRating, 'f', 2, 64),
			strconv.Itoa(r.Votes),
			strconv.Itoa(r.Views),
			strconv.Itoa(r.Follows),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
