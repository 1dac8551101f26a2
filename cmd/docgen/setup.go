package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const serverName = "docgen"

// agentConfig describes an MCP client whose server list lives in a JSON
// file.
type agentConfig struct {
	ID          string
	DisplayName string
	Markers     []string          // directories whose presence signals the agent
	Path        func() string     // config file path
	ServersKey  string            // "servers" (VS Code) or "mcpServers"
	Extra       map[string]string // extra entry fields, e.g. "type": "stdio"
}

var agents = []agentConfig{
	{
		ID: "project", DisplayName: "Project .mcp.json",
		Path:       func() string { return ".mcp.json" },
		ServersKey: "mcpServers",
	},
	{
		ID: "vscode", DisplayName: "VS Code",
		Markers:    []string{".vscode"},
		Path:       func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey: "servers",
		Extra:      map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Markers:    []string{".cursor"},
		Path:       func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude-desktop", DisplayName: "Claude Desktop",
		Path:       claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

// Replaceable for testing.
var statFunc = os.Stat

func claudeDesktopConfigPath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

func findAgent(id string) (agentConfig, bool) {
	for _, a := range agents {
		if a.ID == id {
			return a, true
		}
	}
	return agentConfig{}, false
}

// detectAgents returns the agents whose marker directory exists in the
// working directory. The project file is always offered.
func detectAgents() []agentConfig {
	var found []agentConfig
	for _, a := range agents {
		if len(a.Markers) == 0 {
			if a.ID == "project" {
				found = append(found, a)
			}
			continue
		}
		for _, m := range a.Markers {
			if info, err := statFunc(m); err == nil && info.IsDir() {
				found = append(found, a)
				break
			}
		}
	}
	return found
}

type setupOptions struct {
	agents []string
	dir    string
	print  bool
}

func newSetupCmd() *cobra.Command {
	var so setupOptions
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register docgen as an MCP server with coding agents",
		Long: "Adds a \"docgen\" server entry to MCP client config files. Without\n" +
			"--agent, agents are detected from marker directories in the current\n" +
			"directory. Existing entries are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd.OutOrStdout(), so)
		},
	}
	var ids []string
	for _, a := range agents {
		ids = append(ids, a.ID)
	}
	cmd.Flags().StringSliceVar(&so.agents, "agent", nil, "agents to configure: "+strings.Join(ids, ", "))
	cmd.Flags().StringVar(&so.dir, "dir", ".", "source tree the server documents")
	cmd.Flags().BoolVar(&so.print, "print", false, "print the server entry instead of writing files")
	return cmd
}

func runSetup(w io.Writer, so setupOptions) error {
	root, err := filepath.Abs(so.dir)
	if err != nil {
		return err
	}

	if so.print {
		out, err := json.MarshalIndent(map[string]any{serverName: serverEntry(root, nil)}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	var targets []agentConfig
	if len(so.agents) == 0 {
		targets = detectAgents()
	}
	for _, id := range so.agents {
		a, ok := findAgent(id)
		if !ok {
			return fmt.Errorf("unknown agent %q", id)
		}
		targets = append(targets, a)
	}

	for _, a := range targets {
		path := a.Path()
		changed, err := configureAgent(a, path, root)
		switch {
		case err != nil:
			fmt.Fprintf(w, "  ! %s: %v\n", a.DisplayName, err)
		case changed:
			fmt.Fprintf(w, "  + %s configured (%s)\n", a.DisplayName, path)
		default:
			fmt.Fprintf(w, "  = %s already configured (%s)\n", a.DisplayName, path)
		}
	}
	return nil
}

// serverEntry is the MCP server config object for docgen.
func serverEntry(root string, extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": serverName,
		"args":    []any{"serve", root},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds a docgen entry under serversKey of the JSON
// document existing (which may be empty). Returns nil, nil when an entry
// already exists.
func mergeServerEntry(existing []byte, serversKey, root string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(root, extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureAgent merges the entry into the agent's config file, creating
// it and its directory when missing. Reports whether the file changed.
func configureAgent(a agentConfig, path, root string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	merged, err := mergeServerEntry(existing, a.ServersKey, root, a.Extra)
	if err != nil || merged == nil {
		return false, err
	}
	if err := os.WriteFile(path, merged, 0644); err != nil {
		return false, err
	}
	return true, nil
}
