package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listSourcesTool() mcp.Tool {
	return mcp.NewTool("list_sources",
		mcp.WithDescription("Returns the source files that define components, with component counts"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("Lists component summaries, optionally filtered by source file and keyword"),
		mcp.WithString("source", mcp.Description("Source file id, e.g. src/Button.jsx")),
		mcp.WithString("keyword", mcp.Description("Case-insensitive match on display name and description")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getComponentTool() mcp.Tool {
	return mcp.NewTool("get_component",
		mcp.WithDescription("Full metadata for components: props with types and defaults, doclets, methods"),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Display names or node ids"),
			mcp.WithStringItems(),
		),
		mcp.WithString("source", mcp.Description("Pick among components sharing a name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func searchComponentsTool() mcp.Tool {
	return mcp.NewTool("search_components",
		mcp.WithDescription("Searches names, descriptions, prop names and doclet values"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
