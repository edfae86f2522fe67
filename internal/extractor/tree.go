// Package extractor turns statement files into the flat text blob the
// parsers work on.
package extractor

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
)

// Document is a parsed-PDF token tree: pages of positioned text runs.
// The JSON shape matches the output of pdf2json, so trees produced by
// upstream tooling can be fed in directly.
type Document struct {
	Pages []Page `json:"Pages"`
}

// Page holds the positioned text items of one page. Y grows downwards.
type Page struct {
	Height float64 `json:"Height,omitempty"`
	Texts  []TextItem `json:"Texts"`
}

// TextItem is one positioned item. Its runs are concatenated in order.
type TextItem struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R []Run   `json:"R"`
}

// Run is a single text run. T may be URL-encoded, as pdf2json emits it.
type Run struct {
	T string `json:"T"`
}

// rowTolerance is how far apart two items' Y values may be and still sit
// on the same line.
const rowTolerance = 0.5

// columnGap is the X distance above which a wider separator is inserted
// between two items on the same line.
const columnGap = 15.0

// DecodeTree parses a pdf2json-style token tree.
func DecodeTree(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode token tree: %w", err)
	}
	return &doc, nil
}

// Flatten renders the tree as one text blob: items are grouped into lines by
// Y, each line is ordered by X, and pages are separated by a blank line.
func Flatten(doc *Document) string {
	if doc == nil {
		return ""
	}
	pages := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if text := flattenPage(p); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n")
}

type item struct {
	x, y float64
	s    string
}

func flattenPage(p Page) string {
	items := make([]item, 0, len(p.Texts))
	for _, t := range p.Texts {
		s := runText(t.R)
		if strings.TrimSpace(s) == "" {
			continue
		}
		items = append(items, item{x: t.X, y: t.Y, s: s})
	}
	if len(items) == 0 {
		return ""
	}

	sort.SliceStable(items, func(a, b int) bool {
		if math.Abs(items[a].y-items[b].y) > rowTolerance {
			return items[a].y < items[b].y
		}
		return items[a].x < items[b].x
	})

	var lines []string
	var row []item
	flush := func() {
		if line := joinRow(row); line != "" {
			lines = append(lines, line)
		}
		row = row[:0]
	}
	for _, it := range items {
		if len(row) > 0 && math.Abs(it.y-row[0].y) > rowTolerance {
			flush()
		}
		row = append(row, it)
	}
	flush()
	return strings.Join(lines, "\n")
}

func joinRow(row []item) string {
	sort.SliceStable(row, func(a, b int) bool { return row[a].x < row[b].x })
	var b strings.Builder
	for i, it := range row {
		if i > 0 {
			if it.x-row[i-1].x > columnGap {
				b.WriteString("  ")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(strings.TrimSpace(it.s))
	}
	return strings.TrimSpace(b.String())
}

func runText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		s, err := url.PathUnescape(r.T)
		if err != nil {
			s = r.T
		}
		b.WriteString(s)
	}
	return b.String()
}
