package crmtools

import (
	"context"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// NoteAddTool handles the note_add MCP tool.
type NoteAddTool struct {
	store  *crm.Store
	userID string
}

// NewNoteAddTool creates a NoteAddTool.
func NewNoteAddTool(store *crm.Store, userID string) *NoteAddTool {
	return &NoteAddTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for note_add.
func (t *NoteAddTool) Definition() mcp.Tool {
	return mcp.NewTool("note_add",
		mcp.WithDescription("Attach a free-form note to a contact."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Note text"),
		),
		mcp.WithString("title", mcp.Description("Optional note title")),
	)
}

// Handle processes the note_add tool call.
func (t *NoteAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	body := req.GetString("body", "")
	if contactID == "" || body == "" {
		return mcp.NewToolResultError("'contact_id' and 'body' are required"), nil
	}
	note, err := t.store.AddNote(t.userID, contactID, crm.AddNoteParams{
		Title: req.GetString("title", ""),
		Body:  body,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add note: %v", err)), nil
	}
	return jsonResult(note), nil
}

// ─── NoteListTool ───────────────────────────────────────────────────────────

// NoteListTool handles the note_list MCP tool.
type NoteListTool struct {
	store  *crm.Store
	userID string
}

// NewNoteListTool creates a NoteListTool.
func NewNoteListTool(store *crm.Store, userID string) *NoteListTool {
	return &NoteListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for note_list.
func (t *NoteListTool) Definition() mcp.Tool {
	return mcp.NewTool("note_list",
		mcp.WithDescription("List the notes attached to a contact, newest first."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the note_list tool call.
func (t *NoteListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	notes, err := t.store.ListNotes(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
	}
	return jsonResult(notes), nil
}

// ─── ContactMethodAddTool ───────────────────────────────────────────────────

// ContactMethodAddTool handles the contact_method_add MCP tool.
type ContactMethodAddTool struct {
	store  *crm.Store
	userID string
}

// NewContactMethodAddTool creates a ContactMethodAddTool.
func NewContactMethodAddTool(store *crm.Store, userID string) *ContactMethodAddTool {
	return &ContactMethodAddTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_method_add.
func (t *ContactMethodAddTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_method_add",
		mcp.WithDescription(
			"Add a way to reach a contact (email, phone, or any other channel).",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Method type, e.g. email, phone, telegram"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("The address or number itself"),
		),
		mcp.WithString("label", mcp.Description("Optional label, e.g. work, home")),
		mcp.WithBoolean("is_primary", mcp.Description("Mark as the preferred method of this type")),
	)
}

// Handle processes the contact_method_add tool call.
func (t *ContactMethodAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	methodType := req.GetString("type", "")
	value := req.GetString("value", "")
	if contactID == "" || methodType == "" || value == "" {
		return mcp.NewToolResultError("'contact_id', 'type' and 'value' are required"), nil
	}
	method, err := t.store.AddContactMethod(t.userID, contactID, crm.AddContactMethodParams{
		Type:      methodType,
		Value:     value,
		Label:     req.GetString("label", ""),
		IsPrimary: boolArg(req, "is_primary", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add contact method: %v", err)), nil
	}
	return jsonResult(method), nil
}

// ─── ContactMethodListTool ──────────────────────────────────────────────────

// ContactMethodListTool handles the contact_method_list MCP tool.
type ContactMethodListTool struct {
	store  *crm.Store
	userID string
}

// NewContactMethodListTool creates a ContactMethodListTool.
func NewContactMethodListTool(store *crm.Store, userID string) *ContactMethodListTool {
	return &ContactMethodListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_method_list.
func (t *ContactMethodListTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_method_list",
		mcp.WithDescription("List the contact methods recorded for a contact."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the contact_method_list tool call.
func (t *ContactMethodListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	methods, err := t.store.ListContactMethods(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list contact methods: %v", err)), nil
	}
	return jsonResult(methods), nil
}
