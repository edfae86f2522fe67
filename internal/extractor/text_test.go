package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"plain text", "Metro Bank\r\n05/01/2024 SHOP 9.99", "Metro Bank\n05/01/2024 SHOP 9.99", false},
		{"token tree", `{"Pages":[{"Texts":[{"x":1,"y":1,"R":[{"T":"HSBC"}]}]}]}`, "HSBC", false},
		{"windows-1252 pound", "01/01/2024 DD BRITISH GAS \xa345.00\r\n", "01/01/2024 DD BRITISH GAS £45.00\n", false},
		{"windows-1252 accents", "CAF\xc9 N\xc9RO", "CAFÉ NÉRO", false},
		{"broken pdf", "%PDF-1.4\ngarbage", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(ctx, []byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPDF_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractPDF(ctx, []byte("%PDF-1.4\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	t.Logf("error: %v", err)
}

func TestIsReadable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"statement text", "Metro Bank Account Statement\n05/01/2024 CARD PAYMENT TO TESCO 12.50 987.50", true},
		{"too short", "Bank statement", false},
		{"no statement words", strings.Repeat("lorem ipsum dolor ", 5), false},
		{"garbage glyphs", strings.Repeat("ÀÁÂÃÄÅ bank ", 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadable(tt.text); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	if err := os.WriteFile(path, []byte("Lloyds Bank\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Lloyds Bank\n" {
		t.Errorf("got %q", got)
	}

	_, err = ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not-exist", err)
	}
}
