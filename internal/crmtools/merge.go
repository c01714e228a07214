package crmtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// ContactMergeTool handles the contact_merge MCP tool.
type ContactMergeTool struct {
	store  *crm.Store
	userID string
}

// NewContactMergeTool creates a ContactMergeTool.
func NewContactMergeTool(store *crm.Store, userID string) *ContactMergeTool {
	return &ContactMergeTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_merge.
func (t *ContactMergeTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_merge",
		mcp.WithDescription(
			"Merge two contacts. Everything attached to the secondary contact "+
				"(notes, reminders, gifts, debts, tasks, contact methods, addresses, "+
				"tags, relationships, life events, activities, food preferences, "+
				"custom fields) moves to the primary, empty profile fields on the "+
				"primary are filled from the secondary, and the secondary is "+
				"soft-deleted. Returns the merged contact and a per-table count of "+
				"what moved.",
		),
		mcp.WithString("primary_contact_id",
			mcp.Required(),
			mcp.Description("Contact that survives the merge"),
		),
		mcp.WithString("secondary_contact_id",
			mcp.Required(),
			mcp.Description("Contact absorbed into the primary and then soft-deleted"),
		),
	)
}

// Handle processes the contact_merge tool call.
func (t *ContactMergeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	primaryID := req.GetString("primary_contact_id", "")
	secondaryID := req.GetString("secondary_contact_id", "")
	if primaryID == "" || secondaryID == "" {
		return mcp.NewToolResultError("'primary_contact_id' and 'secondary_contact_id' are required"), nil
	}

	contact, summary, err := t.store.MergeContacts(t.userID, primaryID, secondaryID)
	switch {
	case errors.Is(err, crm.ErrSelfMerge):
		return mcp.NewToolResultError("cannot merge a contact with itself"), nil
	case errors.Is(err, crm.ErrPrimaryNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("primary contact %s not found", primaryID)), nil
	case errors.Is(err, crm.ErrSecondaryNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("secondary contact %s not found", secondaryID)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("failed to merge contacts: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"contact": contact,
		"summary": summary,
	}), nil
}

// ─── FindDuplicatesTool ─────────────────────────────────────────────────────

// FindDuplicatesTool handles the contact_find_duplicates MCP tool.
type FindDuplicatesTool struct {
	store  *crm.Store
	userID string
}

// NewFindDuplicatesTool creates a FindDuplicatesTool.
func NewFindDuplicatesTool(store *crm.Store, userID string) *FindDuplicatesTool {
	return &FindDuplicatesTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_find_duplicates.
func (t *FindDuplicatesTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_find_duplicates",
		mcp.WithDescription(
			"Scan all active contacts for likely duplicates. Pairs are reported "+
				"when they share a full name, an email address, or a phone number. "+
				"Results are capped at 20 matches; total reports the full count.",
		),
	)
}

// Handle processes the contact_find_duplicates tool call.
func (t *FindDuplicatesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matches, total, err := t.store.FindDuplicates(t.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to find duplicates: %v", err)), nil
	}
	if matches == nil {
		matches = []crm.DuplicateMatch{}
	}
	return jsonResult(map[string]any{
		"data":  matches,
		"total": total,
	}), nil
}
