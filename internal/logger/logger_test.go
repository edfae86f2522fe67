package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_Nop(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("Expected a disabled logger, got level %v", log.GetLevel())
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"session_id": "abc",
		"bank":       "metro",
	})
	log.Info().Msg("run started")

	output := buf.String()
	for _, want := range []string{`"session_id":"abc"`, `"bank":"metro"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %s, got: %s", want, output)
		}
	}
}

func TestSetDebug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	SetDebug(true)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("got %v, want debug", zerolog.GlobalLevel())
	}
	SetDebug(false)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("got %v, want info", zerolog.GlobalLevel())
	}
}
