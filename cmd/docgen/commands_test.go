package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/docgen/pkg/util"
)

const projectDir = "../../pkg/pipeline/testdata/project"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "docgen "+version+"\n", out)
}

func TestExtractCmd_Catalog(t *testing.T) {
	out, err := execute(t, "extract", projectDir, "--no-cache")
	require.NoError(t, err)

	var cat struct {
		Name       string `json:"name"`
		Components []struct {
			DisplayName string `json:"displayName"`
			Source      string `json:"source"`
			Description string `json:"description"`
			Props       []struct {
				Name string `json:"name"`
			} `json:"props"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cat))
	assert.Equal(t, "components", cat.Name)
	require.Len(t, cat.Components, 2)

	bySource := map[string]string{}
	for _, c := range cat.Components {
		bySource[c.Source] = c.DisplayName
		require.Len(t, c.Props, 1)
	}
	assert.Equal(t, map[string]string{
		"src/Button.jsx":                "Button",
		"src/components/Card/index.tsx": "Card",
	}, bySource)
}

func TestExtractCmd_Nodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	out, err := execute(t, "extract", projectDir, "--no-cache", "--format", "nodes", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out, "output goes to the file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var graph struct {
		Nodes []struct {
			ID       string `json:"id"`
			Internal struct {
				Type string `json:"type"`
			} `json:"internal"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(data, &graph))

	types := map[string]int{}
	for _, n := range graph.Nodes {
		types[n.Internal.Type]++
	}
	assert.Equal(t, 2, types["ComponentMetadata"])
	assert.Equal(t, 2, types["ComponentProp"])
}

func TestExtractCmd_Errors(t *testing.T) {
	_, err := execute(t, "extract", projectDir, "--no-cache", "--fail-on-error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 4 files failed")

	_, err = execute(t, "extract", projectDir, "--no-cache", "--format", "yaml")
	assert.Error(t, err)

	_, err = execute(t, "extract", filepath.Join(projectDir, "src", "utils.js"))
	assert.Error(t, err, "a file is not a source tree")

	_, err = execute(t, "extract", projectDir, "--no-cache", "--resolver", "bogus")
	assert.Error(t, err)
}

func TestExtractCmd_Config(t *testing.T) {
	cfg := writeConfig(t, "include: [\"**/*.tsx\"]\ncatalog:\n  name: ui\n")
	out, err := execute(t, "--config", cfg, "extract", projectDir, "--no-cache")
	require.NoError(t, err)

	var cat struct {
		Name       string `json:"name"`
		Components []struct {
			DisplayName string `json:"displayName"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cat))
	assert.Equal(t, "ui", cat.Name)
	require.Len(t, cat.Components, 1)
	assert.Equal(t, "Card", cat.Components[0].DisplayName)
}

func TestExtractCmd_Cache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	cfg := writeConfig(t, "cache:\n  path: "+cachePath+"\n")

	first, err := execute(t, "--config", cfg, "extract", projectDir)
	require.NoError(t, err)
	_, err = os.Stat(cachePath)
	require.NoError(t, err)

	second, err := execute(t, "--config", cfg, "extract", projectDir)
	require.NoError(t, err)
	assert.JSONEq(t, first, second, "cached results produce the same catalog")
}

func TestInspectCmd(t *testing.T) {
	out, err := execute(t, "inspect", "Button", "--dir", projectDir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Button")
	assert.Contains(t, out, "src/Button.jsx")
	assert.Contains(t, out, "A button.")
	assert.Contains(t, out, "label")

	_, err = execute(t, "inspect", "Missing", "--dir", projectDir, "--no-cache")
	assert.Error(t, err)
}

func TestInspectCmd_Catalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	_, err := execute(t, "extract", projectDir, "--no-cache", "--out", path)
	require.NoError(t, err)

	out, err := execute(t, "inspect", "Card", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "string")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--log-level", "loud", "version"})
	assert.Error(t, cmd.Execute())
}

func TestRunWatch(t *testing.T) {
	root := t.TempDir()
	src := "export const Badge = ({ count }) => <span>{count}</span>;\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "Badge.jsx"), []byte(src), 0644))
	out := filepath.Join(t.TempDir(), "catalog.json")

	opts := &globalOptions{log: util.LoggerConfig{Level: util.LevelError}}
	wo := &watchOptions{
		project:     projectFlags{noCache: true},
		out:         out,
		metricsAddr: "127.0.0.1:0",
		debounce:    20 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, opts, wo, root, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("watch exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for watch to start")
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Badge"`)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `docgen_files_processed_total{result="ok"} 1`)
	assert.Contains(t, string(body), "docgen_sources 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}
