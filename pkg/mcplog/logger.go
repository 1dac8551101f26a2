// Package mcplog records MCP tool calls as JSON lines.
package mcplog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Call describes one tool invocation.
type Call struct {
	Tool          string
	Params        map[string]any
	Duration      time.Duration
	ResponseBytes int
	IsError       bool
	Err           error
}

// Logger writes one JSON object per tool call. A nil *Logger discards
// everything, so callers never need to check for it.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
}

// NewLogger opens path for appending, creating parent directories.
// An empty path returns nil, nil.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	l := NewWriterLogger(f)
	l.closer = f
	return l, nil
}

// NewWriterLogger writes entries to w. Close does not close w.
func NewWriterLogger(w io.Writer) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				a.Value = slog.StringValue(Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	})
	return &Logger{logger: slog.New(h)}
}

// Record writes c. The underlying handler serializes concurrent writes.
func (l *Logger) Record(ctx context.Context, c Call) {
	if l == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("tool", c.Tool),
		slog.Any("params", SanitizeParams(c.Params)),
		slog.Int64("duration_ms", c.Duration.Milliseconds()),
		slog.Int("response_bytes", c.ResponseBytes),
		slog.Int("tokens_est", c.ResponseBytes/4),
		slog.Bool("is_error", c.IsError),
	}
	if c.Err != nil {
		attrs = append(attrs, slog.String("error", c.Err.Error()))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "tool_call", attrs...)
}

// Close closes the log file opened by NewLogger.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// SanitizeParams returns a copy of args safe for logging. Strings longer
// than 64 bytes become a "<key>_len" entry and lists longer than 16
// items a "<key>_count" entry.
func SanitizeParams(args map[string]any) map[string]any {
	const (
		shortStringMax = 64
		shortListMax   = 16
	)
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch v := v.(type) {
		case string:
			if len(v) > shortStringMax {
				out[k+"_len"] = len(v)
				continue
			}
		case []any:
			if len(v) > shortListMax {
				out[k+"_count"] = len(v)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// ResponseBytes returns the serialized size of a result's content, or 0
// for a nil result.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = time.Now
