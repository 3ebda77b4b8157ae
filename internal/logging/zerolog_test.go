package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, s := range []string{"DBG", "INF", "WRN", "ERR", "dbg", "inf", "wrn", "err", "a=1", "b=2", "c=3", "d=4"} {
		assert.Contains(t, out, s)
	}
}

func TestZerologLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, slog.LevelWarn)
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestZerologLogger_With_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, slog.LevelInfo).With("module", "account_service")

	log.Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "module=account_service")
	assert.Contains(t, out, "k=v")
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	l, err := New("json", "debug", &buf)
	require.NoError(t, err)
	l.Debug(context.Background(), "json-line", "k", "v")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "json output expected, got %q", buf.String())
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	l, err = New("console", "info", &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "console-line")
	assert.Contains(t, buf.String(), "console-line")

	_, err = New("xml", "info", &buf)
	require.Error(t, err)

	_, err = New("json", "loud", &buf)
	require.Error(t, err)
}
