package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("List documented components, optionally filtered by a keyword in the name or description"),
		mcp.WithString("keyword", mcp.Description("Case-insensitive keyword")),
	)
}

func searchComponentsTool() mcp.Tool {
	return mcp.NewTool("search_components",
		mcp.WithDescription("Search component names, descriptions and prop names"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive search text")),
	)
}

func getComponentPropsTool() mcp.Tool {
	return mcp.NewTool("get_component_props",
		mcp.WithDescription("Documented props of a component in display order, with import and anchor information"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component display name")),
	)
}

func getStoryArgsTool() mcp.Tool {
	return mcp.NewTool("get_story_args",
		mcp.WithDescription("Story args (Storybook argTypes) derived from a component's props"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component display name")),
	)
}

func renderComponentTool() mcp.Tool {
	return mcp.NewTool("render_component",
		mcp.WithDescription("Rendered HTML API section of a component: heading, import, description, prop table and story args"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component display name")),
	)
}
