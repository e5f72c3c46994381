package testenv

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleNewLogHandler() {
	logger := slog.New(NewLogHandler(os.Stdout, slog.LevelDebug))

	logger.Debug("resolved query", "query", `{"age":38}`)
	logger.With("collection", "friends").Error("operation failed", slog.Group("op", "name", "count"))

	// Output:
	// [0] DEBUG: resolved query query={"age":38}
	// [1] ERROR: operation failed collection=friends, op.name=count
}

func TestLogHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHandler(&buf, slog.LevelWarn)
	logger := slog.New(h)

	logger.Info("hidden")
	logger.Warn("shown")
	logger.WithGroup("g").Error("grouped", "k", 1)

	assert.Equal(t, []string{"shown", "grouped"}, h.Messages())
	assert.Equal(t, "[0] WARN: shown\n[1] ERROR: grouped g.k=1\n", buf.String())
}
