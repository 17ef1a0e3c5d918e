package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/storyargs"
)

// componentSummary is the list_components row.
type componentSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PropCount   int    `json:"prop_count"`
}

// searchHit is the search_components row.
type searchHit struct {
	Name        string `json:"name"`
	MatchReason string `json:"match_reason"`
}

// componentProps is the get_component_props response.
type componentProps struct {
	Name         string      `json:"name"`
	DisplayName  string      `json:"display_name"`
	ImportName   string      `json:"import_name"`
	Anchor       string      `json:"anchor"`
	Description  string      `json:"description,omitempty"`
	Composes     []string    `json:"composes,omitempty"`
	Props        []propEntry `json:"props"`
	OmittedProps int         `json:"omitted_props"`
}

type propEntry struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Options     []string `json:"options,omitempty"`
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword := req.GetString("keyword", "")
	comps := s.currentQuery().ListComponents(keyword)

	out := make([]componentSummary, 0, len(comps))
	for _, comp := range comps {
		summary := componentSummary{Name: comp.DisplayName, PropCount: len(storyargs.Visible(comp.Props))}
		if comp.Description != nil {
			summary.Description = comp.Description.Text
		}
		out = append(out, summary)
	}
	return jsonResult(out)
}

func (s *Server) handleSearchComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := s.currentQuery().SearchComponents(query)
	out := make([]searchHit, 0, len(results))
	for _, r := range results {
		out = append(out, searchHit{Name: r.Component.DisplayName, MatchReason: r.MatchReason})
	}
	return jsonResult(out)
}

func (s *Server) handleGetComponentProps(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	comp, _, errResult := s.lookupComponent(req)
	if errResult != nil {
		return errResult, nil
	}

	name, importName := docpage.DisplayNames(comp)
	visible := storyargs.Visible(comp.Props)
	out := componentProps{
		Name:         comp.DisplayName,
		DisplayName:  name,
		ImportName:   importName,
		Anchor:       docpage.AnchorID(name),
		Composes:     comp.Composes,
		Props:        make([]propEntry, 0, len(visible)),
		OmittedProps: len(comp.Props) - len(visible),
	}
	if comp.Description != nil {
		out.Description = comp.Description.Text
	}

	for _, prop := range visible {
		typeName, _ := prop.Type.TypeName()
		entry := propEntry{
			Name:       prop.Name,
			Type:       typeName,
			Required:   prop.Required,
			Deprecated: prop.Doclets.Has(metadata.TagDeprecated),
		}
		if options, ok := storyargs.ParseUnion(typeName); ok {
			entry.Type = storyargs.TypeEnum
			entry.Options = options
		}
		if prop.DefaultValue != nil {
			entry.Default = prop.DefaultValue.Value
		}
		if prop.Description != nil {
			entry.Description = prop.Description.Text
		}
		out.Props = append(out.Props, entry)
	}
	return jsonResult(out)
}

func (s *Server) handleGetStoryArgs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	comp, qs, errResult := s.lookupComponent(req)
	if errResult != nil {
		return errResult, nil
	}

	args, err := s.storyArgs(qs, comp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build story args: %v", err)), nil
	}
	text, err := args.JSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode story args: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleRenderComponent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	comp, _, errResult := s.lookupComponent(req)
	if errResult != nil {
		return errResult, nil
	}
	if s.renderer == nil {
		return mcp.NewToolResultError("rendering is not configured"), nil
	}

	html, err := s.renderer.RenderString(comp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render component: %v", err)), nil
	}
	return mcp.NewToolResultText(html), nil
}

// lookupComponent resolves the required "name" argument against the current
// metadata. On failure it returns a tool error result.
func (s *Server) lookupComponent(req mcp.CallToolRequest) (*metadata.ComponentMetadata, *metadata.QueryService, *mcp.CallToolResult) {
	name, err := req.RequireString("name")
	if err != nil {
		return nil, nil, mcp.NewToolResultError(err.Error())
	}
	qs := s.currentQuery()
	comp, ok := qs.GetComponent(name)
	if !ok {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("component %q not found", name))
	}
	return comp, qs, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
