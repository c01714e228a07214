package crmtools

import (
	"context"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// TagAddTool handles the tag_add MCP tool.
type TagAddTool struct {
	store  *crm.Store
	userID string
}

// NewTagAddTool creates a TagAddTool.
func NewTagAddTool(store *crm.Store, userID string) *TagAddTool {
	return &TagAddTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for tag_add.
func (t *TagAddTool) Definition() mcp.Tool {
	return mcp.NewTool("tag_add",
		mcp.WithDescription(
			"Tag a contact. The tag is created on first use and shared across "+
				"contacts; tagging twice with the same name is a no-op.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tag name, e.g. friend, colleague, book-club"),
		),
	)
}

// Handle processes the tag_add tool call.
func (t *TagAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	name := req.GetString("name", "")
	if contactID == "" || name == "" {
		return mcp.NewToolResultError("'contact_id' and 'name' are required"), nil
	}
	tag, err := t.store.TagContact(t.userID, contactID, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to tag contact: %v", err)), nil
	}
	return jsonResult(tag), nil
}

// ─── TagRemoveTool ──────────────────────────────────────────────────────────

// TagRemoveTool handles the tag_remove MCP tool.
type TagRemoveTool struct {
	store  *crm.Store
	userID string
}

// NewTagRemoveTool creates a TagRemoveTool.
func NewTagRemoveTool(store *crm.Store, userID string) *TagRemoveTool {
	return &TagRemoveTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for tag_remove.
func (t *TagRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("tag_remove",
		mcp.WithDescription(
			"Remove a tag from a contact. The tag itself survives for other contacts.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tag name to remove"),
		),
	)
}

// Handle processes the tag_remove tool call.
func (t *TagRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	name := req.GetString("name", "")
	if contactID == "" || name == "" {
		return mcp.NewToolResultError("'contact_id' and 'name' are required"), nil
	}
	if err := t.store.UntagContact(t.userID, contactID, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to untag contact: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Tag %q removed", name)), nil
}

// ─── TagListTool ────────────────────────────────────────────────────────────

// TagListTool handles the tag_list MCP tool.
type TagListTool struct {
	store  *crm.Store
	userID string
}

// NewTagListTool creates a TagListTool.
func NewTagListTool(store *crm.Store, userID string) *TagListTool {
	return &TagListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for tag_list.
func (t *TagListTool) Definition() mcp.Tool {
	return mcp.NewTool("tag_list",
		mcp.WithDescription("List the tags on a contact, alphabetically."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the tag_list tool call.
func (t *TagListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	tags, err := t.store.ListContactTags(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tags: %v", err)), nil
	}
	return jsonResult(tags), nil
}
