package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithItemID(ctx, "prod-42")

	log.Error(ctx, "mirror failed", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"item_id\"")) {
		t.Fatalf("expected item_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerEndpointFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithEndpoint(context.Background(), "GET", "/cart")
	log.Info(ctx, "request complete")

	if !bytes.Contains(buf.Bytes(), []byte("\"path\":\"/cart\"")) {
		t.Fatalf("expected path field; entry=%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info for empty level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fall back to info, got %v", lvl)
	}
	if lvl := ParseLevel("warn"); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %v", lvl)
	}
}
