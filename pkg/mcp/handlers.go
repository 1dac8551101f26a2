package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/docgen/pkg/catalog"
)

type sourceSummary struct {
	Source         string `json:"source"`
	ComponentCount int    `json:"component_count"`
}

type componentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	PropCount   int    `json:"prop_count"`
}

type searchResult struct {
	componentSummary
	MatchReason string `json:"match_reason"`
}

func summarize(c *catalog.Component) componentSummary {
	return componentSummary{
		ID:          c.ID,
		Name:        c.DisplayName,
		Source:      c.Source,
		Description: firstLine(c.Description),
		PropCount:   len(c.Props),
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleListSources(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := s.queryService()
	sources := make([]sourceSummary, 0, len(q.ListSources()))
	for _, src := range q.ListSources() {
		sources = append(sources, sourceSummary{
			Source:         src,
			ComponentCount: len(q.Index.ComponentsBySource[src]),
		})
	}
	return jsonResult(sources)
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := s.queryService()
	comps := q.ListComponents(req.GetString("source", ""), req.GetString("keyword", ""))

	out := make([]componentSummary, 0, len(comps))
	for i := range comps {
		out = append(out, summarize(&comps[i]))
	}
	return jsonResult(out)
}

func (s *Server) handleGetComponent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := req.RequireStringSlice("names")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultError("names must not be empty"), nil
	}

	q := s.queryService()
	source := req.GetString("source", "")

	out := make([]*catalog.Component, 0, len(names))
	var missing []string
	for _, name := range names {
		comp, ok := q.GetComponent(name, source)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out = append(out, comp)
	}
	if len(missing) > 0 {
		return mcp.NewToolResultError("component not found: " + strings.Join(missing, ", ")), nil
	}
	return jsonResult(out)
}

func (s *Server) handleSearchComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches := s.queryService().SearchComponents(query)
	out := make([]searchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, searchResult{componentSummary: summarize(m.Component), MatchReason: m.MatchReason})
	}
	return jsonResult(out)
}
