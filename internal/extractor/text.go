package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var pdfMagic = []byte("%PDF-")

// Text returns the statement text blob for data, which may be a PDF, a
// pdf2json token tree or already-extracted plain text.
func Text(ctx context.Context, data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return "", nil
	case bytes.HasPrefix(trimmed, pdfMagic):
		doc, err := ExtractPDF(ctx, data)
		if err != nil {
			return "", err
		}
		text := Flatten(doc)
		if !IsReadable(text) {
			return "", fmt.Errorf("PDF: %w (the file may be image-based or scanned)", ErrUnreadable)
		}
		return text, nil
	case trimmed[0] == '{' && bytes.Contains(trimmed, []byte(`"Pages"`)):
		doc, err := DecodeTree(trimmed)
		if err != nil {
			return "", err
		}
		return Flatten(doc), nil
	}

	return strings.ReplaceAll(decodeText(data), "\r\n", "\n"), nil
}

// decodeText returns data as UTF-8. Exports that are not valid UTF-8 are
// read as Windows-1252, the usual encoding of UK bank CSV and text exports.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(decoded)
}

// ReadFile reads path and returns its statement text.
func ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := Text(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}
