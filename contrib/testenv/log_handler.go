package testenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogHandler is a slog.Handler writing one deterministic line per record:
// a running index, the level, the message and the attributes, without a timestamp.
// It also keeps the messages so tests can assert on them.
type LogHandler struct {
	out   io.Writer
	level slog.Leveler

	state *logState
	attrs []slog.Attr
	group string
}

type logState struct {
	mu       sync.Mutex
	index    int
	messages []string
}

// NewLogHandler returns a LogHandler writing records at or above level to out.
// A nil out only records.
func NewLogHandler(out io.Writer, level slog.Leveler) *LogHandler {
	if out == nil {
		out = io.Discard
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &LogHandler{out: out, level: level, state: &logState{}}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic
func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	line := fmt.Sprintf("[%d] %s: %s", h.state.index, r.Level, r.Message)
	if sb.Len() > 0 {
		line += " " + sb.String()
	}
	h.state.index++
	h.state.messages = append(h.state.messages, r.Message)

	_, err := fmt.Fprintln(h.out, line)
	return err
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], prefixed(h.group, attrs)...)
	return &c
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.group + name + "."
	return &c
}

// Messages returns the messages handled so far, in order.
func (h *LogHandler) Messages() []string {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	return append([]string(nil), h.state.messages...)
}

func prefixed(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + a.Key, Value: a.Value}
	}
	return out
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(", ")
	}
	fmt.Fprintf(sb, "%s%s=%v", prefix, a.Key, a.Value)
}
