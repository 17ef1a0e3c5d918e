package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
)

// --- helpers ---

func testSet() *metadata.Set {
	str := func(name string) *metadata.PropType { return &metadata.PropType{Name: metadata.StringPtr(name)} }
	return &metadata.Set{
		Components: []metadata.ComponentMetadata{
			{
				DisplayName: "Alert",
				Description: &metadata.Description{Text: "Contextual feedback messages"},
				Props: []metadata.PropertyDescriptor{
					{Name: "bsPrefix", Type: str("string")},
					{
						Name:        "variant",
						Type:        str("'primary' | 'secondary' | 'danger'"),
						Description: &metadata.Description{Text: "Visual style"},
					},
					{Name: "onClose", Type: str("func"), DefaultValue: &metadata.DefaultValue{Value: "null"}},
					{Name: "innerRef", Type: str("object"), Doclets: metadata.Doclets{{Tag: metadata.TagPrivate}}},
					{
						Name:    "show",
						Type:    str("bool"),
						Doclets: metadata.Doclets{{Tag: metadata.TagDeprecated, Value: "use visible"}},
					},
				},
			},
			{
				DisplayName: "Modal",
				Description: &metadata.Description{Text: "A dialog overlay"},
				Props: []metadata.PropertyDescriptor{
					{Name: "centered", Type: str("bool"), Required: true},
				},
			},
		},
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	set := testSet()
	r, err := docpage.NewRenderer(docpage.DefaultOptions())
	require.NoError(t, err)
	s, err := NewServer(metadata.NewQueryService(set, set.BuildIndex()), r, Config{})
	require.NoError(t, err)
	return s
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	switch req.Params.Name {
	case "list_components":
		handler = s.handleListComponents
	case "search_components":
		handler = s.handleSearchComponents
	case "get_component_props":
		handler = s.handleGetComponentProps
	case "get_story_args":
		handler = s.handleGetStoryArgs
	case "render_component":
		handler = s.handleRenderComponent
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- list_components ---

func TestHandleListComponents_NoFilter(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_components", nil))
	assert.False(t, result.IsError)

	var comps []componentSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	require.Len(t, comps, 2)
	assert.Equal(t, "Alert", comps[0].Name)
	assert.Equal(t, 4, comps[0].PropCount, "private props are not counted")
	assert.Equal(t, "Modal", comps[1].Name)
}

func TestHandleListComponents_ByKeyword(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("list_components", map[string]any{"keyword": "DIALOG"}))

	var comps []componentSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "Modal", comps[0].Name)
}

// --- search_components ---

func TestHandleSearchComponents(t *testing.T) {
	tests := []struct {
		query      string
		wantName   string
		wantReason string
	}{
		{query: "modal", wantName: "Modal", wantReason: "name"},
		{query: "feedback", wantName: "Alert", wantReason: "description"},
		{query: "centered", wantName: "Modal", wantReason: "prop:centered"},
	}

	s := testServer(t)
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			result := callTool(t, s, makeRequest("search_components", map[string]any{"query": tc.query}))
			assert.False(t, result.IsError)

			var hits []searchHit
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &hits))
			require.Len(t, hits, 1)
			assert.Equal(t, tc.wantName, hits[0].Name)
			assert.Equal(t, tc.wantReason, hits[0].MatchReason)
		})
	}
}

func TestHandleSearchComponents_NoMatch(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("search_components", map[string]any{"query": "carousel"}))
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleSearchComponents_MissingQuery(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("search_components", nil))
	assert.True(t, result.IsError)
}

// --- get_component_props ---

func TestHandleGetComponentProps(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component_props", map[string]any{"name": "alert"}))
	require.False(t, result.IsError, resultText(t, result))

	var got componentProps
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "Alert", got.Name)
	assert.Equal(t, "alert-props", got.Anchor)
	assert.Equal(t, 1, got.OmittedProps)

	names := make([]string, 0, len(got.Props))
	for _, p := range got.Props {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"onClose", "show", "variant", "bsPrefix"}, names)

	assert.Equal(t, "null", got.Props[0].Default)
	assert.True(t, got.Props[1].Deprecated)
	assert.Equal(t, "enum", got.Props[2].Type)
	assert.Equal(t, []string{"primary", "secondary", "danger"}, got.Props[2].Options)
}

func TestHandleGetComponentProps_Errors(t *testing.T) {
	s := testServer(t)

	result := callTool(t, s, makeRequest("get_component_props", nil))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest("get_component_props", map[string]any{"name": "Carousel"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"Carousel" not found`)
}

// --- get_story_args ---

func TestHandleGetStoryArgs(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Modal"}))
	require.False(t, result.IsError)

	want := `{
  "centered": {
    "name": "centered",
    "type": {
      "name": "bool",
      "required": true
    }
  }
}`
	assert.Equal(t, want, resultText(t, result))
}

func TestHandleGetStoryArgs_UsesCache(t *testing.T) {
	s := testServer(t)
	callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Alert"}))
	assert.True(t, s.argsCache.Contains("Alert"))

	first, ok := s.argsCache.Get("Alert")
	require.True(t, ok)
	args, err := s.storyArgs(s.currentQuery(), &s.currentQuery().Set.Components[0])
	require.NoError(t, err)
	assert.Same(t, first, args)
}

func TestHandleGetStoryArgs_MissingTypeName(t *testing.T) {
	set := &metadata.Set{Components: []metadata.ComponentMetadata{{
		DisplayName: "Broken",
		Props:       []metadata.PropertyDescriptor{{Name: "size", Type: &metadata.PropType{}}},
	}}}
	s, err := NewServer(metadata.NewQueryService(set, set.BuildIndex()), nil, Config{})
	require.NoError(t, err)

	result := callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Broken"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), `prop "size"`)
}

// --- render_component ---

func TestHandleRenderComponent(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("render_component", map[string]any{"name": "Modal"}))
	require.False(t, result.IsError)

	html := resultText(t, result)
	assert.Contains(t, html, `id="modal-props"`)
	assert.Contains(t, html, "Story args")
}

func TestHandleRenderComponent_NoRenderer(t *testing.T) {
	set := testSet()
	s, err := NewServer(metadata.NewQueryService(set, set.BuildIndex()), nil, Config{})
	require.NoError(t, err)

	result := callTool(t, s, makeRequest("render_component", map[string]any{"name": "Modal"}))
	assert.True(t, result.IsError)
}

// --- reload ---

func TestReload_ReplacesMetadataAndPurgesCache(t *testing.T) {
	s := testServer(t)
	callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Alert"}))
	require.Equal(t, 1, s.argsCache.Len())

	set := &metadata.Set{Components: []metadata.ComponentMetadata{{DisplayName: "Badge"}}}
	s.Reload(metadata.NewQueryService(set, set.BuildIndex()))
	assert.Equal(t, 0, s.argsCache.Len())

	result := callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Alert"}))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest("get_story_args", map[string]any{"name": "Badge"}))
	require.False(t, result.IsError)
	assert.Equal(t, "{}", resultText(t, result))
}

func TestStoryArgs_StaleQueryNotCached(t *testing.T) {
	s := testServer(t)
	stale := s.currentQuery()

	set := testSet()
	s.Reload(metadata.NewQueryService(set, set.BuildIndex()))

	_, err := s.storyArgs(stale, &stale.Set.Components[0])
	require.NoError(t, err)
	assert.Equal(t, 0, s.argsCache.Len())
}
