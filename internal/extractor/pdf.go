package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when a statement yields no readable text, which
// usually means it is image-based or uses fonts that cannot be decoded.
var ErrUnreadable = errors.New("no readable text could be extracted")

// ExtractPDF builds a token tree from PDF bytes. The PDF library is not
// context aware, so it runs in its own goroutine and ExtractPDF returns as
// soon as ctx is done; the abandoned goroutine finishes on its own.
func ExtractPDF(ctx context.Context, data []byte) (*Document, error) {
	type result struct {
		doc *Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := readTree(ctx, data)
		done <- result{doc, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.doc, r.err
	}
}

func readTree(ctx context.Context, data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	doc = &Document{Pages: make([]Page, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		p := pageByContent(page)
		if len(p.Texts) == 0 {
			p = pageByRow(page)
		}
		doc.Pages = append(doc.Pages, p)
	}
	return doc, nil
}

// pageByContent reads the raw text objects. PDF content space grows
// upwards, so Y is flipped against the page height.
func pageByContent(page pdf.Page) Page {
	content := page.Content()
	height := page.V.Key("MediaBox").Index(3).Float64()
	if height == 0 {
		for _, t := range content.Text {
			if t.Y > height {
				height = t.Y
			}
		}
	}

	p := Page{Height: height}
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		p.Texts = append(p.Texts, TextItem{X: t.X, Y: height - t.Y, R: []Run{{T: t.S}}})
	}
	return p
}

// pageByRow is the fallback for pages whose content stream yields nothing
// but which the library can still group into rows.
func pageByRow(page pdf.Page) Page {
	var p Page
	rows, err := page.GetTextByRow()
	if err != nil {
		return p
	}
	for i, row := range rows {
		for _, word := range row.Content {
			if strings.TrimSpace(word.S) == "" {
				continue
			}
			p.Texts = append(p.Texts, TextItem{X: word.X, Y: float64(i), R: []Run{{T: word.S}}})
		}
	}
	return p
}

// textQuality returns the ratio of plain readable characters to all
// characters. unicode.IsLetter is too broad here: garbage from
// identity-encoded fonts is full of accented letters.
func textQuality(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"£$€%&@#!?+=*→", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every bank statement.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period",
}

// IsReadable requires more than 50 characters of text, mostly plain
// characters, and at least one word a statement would contain.
func IsReadable(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range commonWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
