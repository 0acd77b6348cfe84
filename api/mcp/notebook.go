package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/verso/pkg/brief"
	"github.com/papercomputeco/verso/pkg/notebook"
)

var (
	listToolName    = "notebook_list"
	listDescription = "List the evidence saved in the verso research notebook, newest first. Each item has an id, the source page url and title, the saved content and its type (quote or insight)."

	appendToolName    = "notebook_append"
	appendDescription = "Save a piece of evidence to the verso research notebook. The item is attributed to the page currently open in the panel. Use type \"quote\" for text taken from the page and \"insight\" for your own summary."

	removeToolName    = "notebook_remove"
	removeDescription = "Remove an item from the verso research notebook by id. Removing an id that is not in the notebook does nothing."

	briefToolName    = "page_brief"
	briefDescription = "Return the research brief of the page currently open in the panel: summary, key points, entities and reading metrics."
)

// ListInput takes no arguments.
type ListInput struct{}

// ListOutput is the notebook, newest first.
type ListOutput struct {
	Items []notebook.EvidenceItem `json:"items"`
	Dirty bool                    `json:"dirty"`
}

// AppendInput represents the input arguments for the notebook_append tool.
type AppendInput struct {
	Content string `json:"content" jsonschema:"the text to save"`
	Type    string `json:"type,omitempty" jsonschema:"quote or insight, defaults to quote"`
}

// AppendOutput is the saved item.
type AppendOutput struct {
	Item      notebook.EvidenceItem `json:"item"`
	Persisted bool                  `json:"persisted"`
}

// RemoveInput represents the input arguments for the notebook_remove tool.
type RemoveInput struct {
	ID string `json:"id" jsonschema:"the id of the notebook item to remove"`
}

// RemoveOutput reports whether the id was in the notebook.
type RemoveOutput struct {
	Removed bool `json:"removed"`
}

// BriefInput takes no arguments.
type BriefInput struct{}

// BriefOutput wraps the brief of the active page.
type BriefOutput struct {
	Brief *brief.Brief `json:"brief"`
}

func (s *Server) handleList(_ context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	store := s.config.Panel.Store()
	output := ListOutput{Items: store.Items(), Dirty: store.Dirty()}
	return jsonResult(output)
}

func (s *Server) handleAppend(ctx context.Context, _ *mcp.CallToolRequest, input AppendInput) (*mcp.CallToolResult, AppendOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return errorResult("content is required"), AppendOutput{}, nil
	}

	itemType := notebook.TypeQuote
	if input.Type != "" {
		t, err := notebook.ParseItemType(input.Type)
		if err != nil {
			return errorResult(err.Error()), AppendOutput{}, nil
		}
		itemType = t
	}

	item, err := s.config.Panel.Save(ctx, input.Content, itemType)
	var perr *notebook.PersistError
	switch {
	case errors.As(err, &perr):
		s.config.Logger.Warn("notebook write pending", "item_id", item.ID, "error", err)
		return jsonResult(AppendOutput{Item: item, Persisted: false})
	case err != nil:
		return errorResult(fmt.Sprintf("Append failed: %v", err)), AppendOutput{}, nil
	}

	return jsonResult(AppendOutput{Item: item, Persisted: true})
}

func (s *Server) handleRemove(ctx context.Context, _ *mcp.CallToolRequest, input RemoveInput) (*mcp.CallToolResult, RemoveOutput, error) {
	if input.ID == "" {
		return errorResult("id is required"), RemoveOutput{}, nil
	}

	_, existed := s.config.Panel.Store().Get(input.ID)

	err := s.config.Panel.Delete(ctx, input.ID)
	var perr *notebook.PersistError
	if err != nil && !errors.As(err, &perr) {
		return errorResult(fmt.Sprintf("Remove failed: %v", err)), RemoveOutput{}, nil
	}
	if perr != nil {
		s.config.Logger.Warn("notebook write pending", "item_id", input.ID, "error", err)
	}

	return jsonResult(RemoveOutput{Removed: existed})
}

func (s *Server) handleBrief(_ context.Context, _ *mcp.CallToolRequest, _ BriefInput) (*mcp.CallToolResult, BriefOutput, error) {
	b := s.config.Panel.Brief()
	if b == nil {
		return errorResult("No brief is available for the current page."), BriefOutput{}, nil
	}
	return jsonResult(BriefOutput{Brief: b})
}

// jsonResult mirrors the structured output as text content for clients
// that do not read structuredContent.
func jsonResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
