package crmtools

import (
	"context"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// RelationshipAddTool handles the relationship_add MCP tool.
type RelationshipAddTool struct {
	store  *crm.Store
	userID string
}

// NewRelationshipAddTool creates a RelationshipAddTool.
func NewRelationshipAddTool(store *crm.Store, userID string) *RelationshipAddTool {
	return &RelationshipAddTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for relationship_add.
func (t *RelationshipAddTool) Definition() mcp.Tool {
	return mcp.NewTool("relationship_add",
		mcp.WithDescription(
			"Link two contacts. The inverse link is created automatically: "+
				"adding 'parent' from A to B also records 'child' from B to A. "+
				"Symmetric types (friend, spouse, sibling, colleague) are their "+
				"own inverse.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact the relationship starts from"),
		),
		mcp.WithString("related_contact_id",
			mcp.Required(),
			mcp.Description("Contact the relationship points to"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Relationship type as seen from contact_id, e.g. parent, boss, friend"),
		),
	)
}

// Handle processes the relationship_add tool call.
func (t *RelationshipAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	relatedID := req.GetString("related_contact_id", "")
	relType := req.GetString("type", "")
	if contactID == "" || relatedID == "" || relType == "" {
		return mcp.NewToolResultError("'contact_id', 'related_contact_id' and 'type' are required"), nil
	}
	rel, err := t.store.CreateRelationship(t.userID, contactID, relatedID, relType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add relationship: %v", err)), nil
	}
	return jsonResult(rel), nil
}

// ─── RelationshipRemoveTool ─────────────────────────────────────────────────

// RelationshipRemoveTool handles the relationship_remove MCP tool.
type RelationshipRemoveTool struct {
	store  *crm.Store
	userID string
}

// NewRelationshipRemoveTool creates a RelationshipRemoveTool.
func NewRelationshipRemoveTool(store *crm.Store, userID string) *RelationshipRemoveTool {
	return &RelationshipRemoveTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for relationship_remove.
func (t *RelationshipRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("relationship_remove",
		mcp.WithDescription("Remove the link between two contacts. Both directions are removed."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("One side of the relationship"),
		),
		mcp.WithString("related_contact_id",
			mcp.Required(),
			mcp.Description("The other side of the relationship"),
		),
	)
}

// Handle processes the relationship_remove tool call.
func (t *RelationshipRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	relatedID := req.GetString("related_contact_id", "")
	if contactID == "" || relatedID == "" {
		return mcp.NewToolResultError("'contact_id' and 'related_contact_id' are required"), nil
	}
	if err := t.store.DeleteRelationship(t.userID, contactID, relatedID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove relationship: %v", err)), nil
	}
	return mcp.NewToolResultText("Relationship removed"), nil
}

// ─── RelationshipListTool ───────────────────────────────────────────────────

// RelationshipListTool handles the relationship_list MCP tool.
type RelationshipListTool struct {
	store  *crm.Store
	userID string
}

// NewRelationshipListTool creates a RelationshipListTool.
func NewRelationshipListTool(store *crm.Store, userID string) *RelationshipListTool {
	return &RelationshipListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for relationship_list.
func (t *RelationshipListTool) Definition() mcp.Tool {
	return mcp.NewTool("relationship_list",
		mcp.WithDescription("List the relationships a contact has, as seen from that contact."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the relationship_list tool call.
func (t *RelationshipListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	rels, err := t.store.ListRelationships(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list relationships: %v", err)), nil
	}
	return jsonResult(rels), nil
}
