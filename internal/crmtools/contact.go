package crmtools

import (
	"context"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// ContactCreateTool handles the contact_create MCP tool.
type ContactCreateTool struct {
	store  *crm.Store
	userID string
}

// NewContactCreateTool creates a ContactCreateTool.
func NewContactCreateTool(store *crm.Store, userID string) *ContactCreateTool {
	return &ContactCreateTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_create.
func (t *ContactCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_create",
		mcp.WithDescription(
			"Create a new contact. Only first_name is required; everything else "+
				"can be filled in later with contact_update.",
		),
		mcp.WithString("first_name",
			mcp.Required(),
			mcp.Description("Contact's first name"),
		),
		mcp.WithString("last_name", mcp.Description("Contact's last name")),
		mcp.WithString("nickname", mcp.Description("Nickname")),
		mcp.WithString("gender", mcp.Description("Gender")),
		mcp.WithString("status",
			mcp.Description("Contact status: active, archived, or deceased (default active)"),
		),
		mcp.WithString("birthday_date",
			mcp.Description("Exact birthday as YYYY-MM-DD (alternative: month/day or year)"),
		),
		mcp.WithNumber("birthday_month", mcp.Description("Birthday month (1-12) when the year is unknown")),
		mcp.WithNumber("birthday_day", mcp.Description("Birthday day (1-31) when the year is unknown")),
		mcp.WithNumber("birthday_year", mcp.Description("Approximate birth year when the exact date is unknown")),
		mcp.WithString("company", mcp.Description("Company they work for")),
		mcp.WithString("job_title", mcp.Description("Job title")),
		mcp.WithString("how_we_met", mcp.Description("How you met this person")),
	)
}

// Handle processes the contact_create tool call.
func (t *ContactCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	firstName := req.GetString("first_name", "")
	if firstName == "" {
		return mcp.NewToolResultError("'first_name' is required"), nil
	}

	contact, err := t.store.CreateContact(t.userID, crm.CreateContactParams{
		FirstName:     firstName,
		LastName:      req.GetString("last_name", ""),
		Nickname:      req.GetString("nickname", ""),
		Gender:        req.GetString("gender", ""),
		Status:        req.GetString("status", ""),
		BirthdayDate:  req.GetString("birthday_date", ""),
		BirthdayMonth: intArg(req, "birthday_month", 0),
		BirthdayDay:   intArg(req, "birthday_day", 0),
		BirthdayYear:  intArg(req, "birthday_year", 0),
		Company:       req.GetString("company", ""),
		JobTitle:      req.GetString("job_title", ""),
		HowWeMet:      req.GetString("how_we_met", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create contact: %v", err)), nil
	}
	return jsonResult(contact), nil
}

// ─── ContactGetTool ─────────────────────────────────────────────────────────

// ContactGetTool handles the contact_get MCP tool.
type ContactGetTool struct {
	store  *crm.Store
	userID string
}

// NewContactGetTool creates a ContactGetTool.
func NewContactGetTool(store *crm.Store, userID string) *ContactGetTool {
	return &ContactGetTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_get.
func (t *ContactGetTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_get",
		mcp.WithDescription("Fetch a single contact by id."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the contact_get tool call.
func (t *ContactGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("contact_id", "")
	if id == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	contact, err := t.store.GetContact(t.userID, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get contact: %v", err)), nil
	}
	return jsonResult(contact), nil
}

// ─── ContactUpdateTool ──────────────────────────────────────────────────────

// ContactUpdateTool handles the contact_update MCP tool.
type ContactUpdateTool struct {
	store  *crm.Store
	userID string
}

// NewContactUpdateTool creates a ContactUpdateTool.
func NewContactUpdateTool(store *crm.Store, userID string) *ContactUpdateTool {
	return &ContactUpdateTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_update.
func (t *ContactUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_update",
		mcp.WithDescription(
			"Partially update a contact. Only the provided fields change; "+
				"pass an empty string to clear a field.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("first_name", mcp.Description("New first name")),
		mcp.WithString("last_name", mcp.Description("New last name")),
		mcp.WithString("nickname", mcp.Description("New nickname")),
		mcp.WithString("gender", mcp.Description("New gender")),
		mcp.WithString("status", mcp.Description("New status: active, archived, or deceased")),
		mcp.WithString("birthday_date", mcp.Description("New exact birthday (YYYY-MM-DD)")),
		mcp.WithNumber("birthday_month", mcp.Description("New birthday month")),
		mcp.WithNumber("birthday_day", mcp.Description("New birthday day")),
		mcp.WithNumber("birthday_year", mcp.Description("New birth year")),
		mcp.WithString("company", mcp.Description("New company")),
		mcp.WithString("job_title", mcp.Description("New job title")),
		mcp.WithString("how_we_met", mcp.Description("New origin story")),
	)
}

// Handle processes the contact_update tool call.
func (t *ContactUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("contact_id", "")
	if id == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}

	var p crm.UpdateContactParams
	args := req.GetArguments()
	strField := func(key string, dst **string) {
		if v, ok := args[key].(string); ok {
			*dst = &v
		}
	}
	intField := func(key string, dst **int) {
		if v, ok := args[key].(float64); ok {
			n := int(v)
			*dst = &n
		}
	}
	strField("first_name", &p.FirstName)
	strField("last_name", &p.LastName)
	strField("nickname", &p.Nickname)
	strField("gender", &p.Gender)
	strField("status", &p.Status)
	strField("birthday_date", &p.BirthdayDate)
	intField("birthday_month", &p.BirthdayMonth)
	intField("birthday_day", &p.BirthdayDay)
	intField("birthday_year", &p.BirthdayYear)
	strField("company", &p.Company)
	strField("job_title", &p.JobTitle)
	strField("how_we_met", &p.HowWeMet)

	contact, err := t.store.UpdateContact(t.userID, id, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update contact: %v", err)), nil
	}
	return jsonResult(contact), nil
}

// ─── ContactListTool ────────────────────────────────────────────────────────

// ContactListTool handles the contact_list MCP tool.
type ContactListTool struct {
	store  *crm.Store
	userID string
}

// NewContactListTool creates a ContactListTool.
func NewContactListTool(store *crm.Store, userID string) *ContactListTool {
	return &ContactListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_list.
func (t *ContactListTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_list",
		mcp.WithDescription("List contacts with pagination. Soft-deleted contacts are excluded."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 25)")),
		mcp.WithNumber("offset", mcp.Description("Rows to skip (default 0)")),
	)
}

// Handle processes the contact_list tool call.
func (t *ContactListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, total, err := t.store.ListContacts(t.userID,
		intArg(req, "limit", 0), intArg(req, "offset", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list contacts: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"data":  contacts,
		"total": total,
	}), nil
}

// ─── ContactDeleteTool ──────────────────────────────────────────────────────

// ContactDeleteTool handles the contact_delete MCP tool.
type ContactDeleteTool struct {
	store  *crm.Store
	userID string
}

// NewContactDeleteTool creates a ContactDeleteTool.
func NewContactDeleteTool(store *crm.Store, userID string) *ContactDeleteTool {
	return &ContactDeleteTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_delete.
func (t *ContactDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_delete",
		mcp.WithDescription(
			"Soft-delete a contact. The record is hidden, not destroyed, and "+
				"can be brought back with contact_restore.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the contact_delete tool call.
func (t *ContactDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("contact_id", "")
	if id == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	if err := t.store.DeleteContact(t.userID, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete contact: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Contact %s deleted (restorable)", id)), nil
}

// ─── ContactRestoreTool ─────────────────────────────────────────────────────

// ContactRestoreTool handles the contact_restore MCP tool.
type ContactRestoreTool struct {
	store  *crm.Store
	userID string
}

// NewContactRestoreTool creates a ContactRestoreTool.
func NewContactRestoreTool(store *crm.Store, userID string) *ContactRestoreTool {
	return &ContactRestoreTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for contact_restore.
func (t *ContactRestoreTool) Definition() mcp.Tool {
	return mcp.NewTool("contact_restore",
		mcp.WithDescription("Restore a previously soft-deleted contact."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the contact_restore tool call.
func (t *ContactRestoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("contact_id", "")
	if id == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	contact, err := t.store.RestoreContact(t.userID, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to restore contact: %v", err)), nil
	}
	return jsonResult(contact), nil
}
