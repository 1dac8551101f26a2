package mcplog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeParams(t *testing.T) {
	longList := make([]any, 20)

	tests := []struct {
		name     string
		input    map[string]any
		wantKeys []string
		wantSkip []string
	}{
		{
			name:  "nil map returns empty",
			input: nil,
		},
		{
			name:     "short string passes through",
			input:    map[string]any{"source": "src/Button.jsx"},
			wantKeys: []string{"source"},
		},
		{
			name:     "long string replaced with _len key",
			input:    map[string]any{"query": string(make([]byte, 200))},
			wantKeys: []string{"query_len"},
			wantSkip: []string{"query"},
		},
		{
			name:     "long list replaced with _count key",
			input:    map[string]any{"names": longList, "source": "a.js"},
			wantKeys: []string{"names_count", "source"},
			wantSkip: []string{"names"},
		},
		{
			name:     "short list and nil pass through",
			input:    map[string]any{"names": []any{"Button"}, "extra": nil},
			wantKeys: []string{"names", "extra"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := SanitizeParams(tc.input)
			require.NotNil(t, out)
			for _, k := range tc.wantKeys {
				assert.Contains(t, out, k)
			}
			for _, k := range tc.wantSkip {
				assert.NotContains(t, out, k)
			}
		})
	}

	t.Run("long string length is recorded", func(t *testing.T) {
		out := SanitizeParams(map[string]any{"query": string(make([]byte, 100))})
		assert.Equal(t, 100, out["query_len"])
	})
}

func TestResponseBytes(t *testing.T) {
	assert.Zero(t, ResponseBytes(nil))

	result := mcp.NewToolResultText("hello")
	b, err := json.Marshal(result.Content)
	require.NoError(t, err)
	assert.Equal(t, len(b), ResponseBytes(result))
}

func fixedClock(t *testing.T) {
	t.Helper()
	orig := Now
	Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { Now = orig })
}

func TestLogger_Record(t *testing.T) {
	fixedClock(t)

	var buf bytes.Buffer
	l := NewWriterLogger(&buf)
	l.Record(context.Background(), Call{
		Tool:          "get_component",
		Params:        map[string]any{"names": []any{"Button"}},
		Duration:      12 * time.Millisecond,
		ResponseBytes: 400,
		IsError:       true,
		Err:           errors.New("boom"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "2026-01-02T03:04:05Z", entry["time"])
	assert.Equal(t, "tool_call", entry["msg"])
	assert.Equal(t, "get_component", entry["tool"])
	assert.Equal(t, float64(12), entry["duration_ms"])
	assert.Equal(t, float64(400), entry["response_bytes"])
	assert.Equal(t, float64(100), entry["tokens_est"])
	assert.Equal(t, true, entry["is_error"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, map[string]any{"names": []any{"Button"}}, entry["params"])
}

func TestLogger_Nil(t *testing.T) {
	l, err := NewLogger("")
	require.NoError(t, err)
	assert.Nil(t, l)

	assert.NotPanics(t, func() {
		l.Record(context.Background(), Call{Tool: "list_sources"})
	})
	assert.NoError(t, l.Close())
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calls.jsonl")

	l, err := NewLogger(path)
	require.NoError(t, err)

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(context.Background(), Call{Tool: "search_components", Params: map[string]any{"query": "button"}})
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "every line is a complete JSON object")
		assert.Equal(t, "search_components", entry["tool"])
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, calls, lines)

	// Reopening appends.
	l, err = NewLogger(path)
	require.NoError(t, err)
	l.Record(context.Background(), Call{Tool: "list_sources"})
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, calls+1, bytes.Count(data, []byte("\n")))
}
