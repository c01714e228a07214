package crmtools

import (
	"context"
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
)

// FoodPreferenceSetTool handles the food_preference_set MCP tool.
type FoodPreferenceSetTool struct {
	store  *crm.Store
	userID string
}

// NewFoodPreferenceSetTool creates a FoodPreferenceSetTool.
func NewFoodPreferenceSetTool(store *crm.Store, userID string) *FoodPreferenceSetTool {
	return &FoodPreferenceSetTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for food_preference_set.
func (t *FoodPreferenceSetTool) Definition() mcp.Tool {
	return mcp.NewTool("food_preference_set",
		mcp.WithDescription(
			"Record a contact's food preferences. Each contact has one record; "+
				"calling again replaces it. List values are deduplicated.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithArray("allergies",
			mcp.Description("Allergies, e.g. peanuts, shellfish"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("dietary_restrictions",
			mcp.Description("Dietary restrictions, e.g. vegetarian, halal"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("favorite_foods",
			mcp.Description("Foods they love"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("disliked_foods",
			mcp.Description("Foods they avoid"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	)
}

// Handle processes the food_preference_set tool call.
func (t *FoodPreferenceSetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	pref, err := t.store.SetFoodPreference(t.userID, contactID, crm.SetFoodPreferenceParams{
		Allergies:           stringListArg(req, "allergies"),
		DietaryRestrictions: stringListArg(req, "dietary_restrictions"),
		FavoriteFoods:       stringListArg(req, "favorite_foods"),
		DislikedFoods:       stringListArg(req, "disliked_foods"),
		Notes:               req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set food preference: %v", err)), nil
	}
	return jsonResult(pref), nil
}

// ─── FoodPreferenceGetTool ──────────────────────────────────────────────────

// FoodPreferenceGetTool handles the food_preference_get MCP tool.
type FoodPreferenceGetTool struct {
	store  *crm.Store
	userID string
}

// NewFoodPreferenceGetTool creates a FoodPreferenceGetTool.
func NewFoodPreferenceGetTool(store *crm.Store, userID string) *FoodPreferenceGetTool {
	return &FoodPreferenceGetTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for food_preference_get.
func (t *FoodPreferenceGetTool) Definition() mcp.Tool {
	return mcp.NewTool("food_preference_get",
		mcp.WithDescription("Fetch a contact's food preferences, if any are recorded."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the food_preference_get tool call.
func (t *FoodPreferenceGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	pref, err := t.store.GetFoodPreference(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get food preference: %v", err)), nil
	}
	if pref == nil {
		return mcp.NewToolResultText("No food preferences recorded for this contact"), nil
	}
	return jsonResult(pref), nil
}

// ─── CustomFieldSetTool ─────────────────────────────────────────────────────

// CustomFieldSetTool handles the custom_field_set MCP tool.
type CustomFieldSetTool struct {
	store  *crm.Store
	userID string
}

// NewCustomFieldSetTool creates a CustomFieldSetTool.
func NewCustomFieldSetTool(store *crm.Store, userID string) *CustomFieldSetTool {
	return &CustomFieldSetTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for custom_field_set.
func (t *CustomFieldSetTool) Definition() mcp.Tool {
	return mcp.NewTool("custom_field_set",
		mcp.WithDescription(
			"Set a named custom field on a contact, e.g. 'shoe size' or "+
				"'github handle'. Setting an existing name updates its value.",
		),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("field_name",
			mcp.Required(),
			mcp.Description("Field name"),
		),
		mcp.WithString("field_value",
			mcp.Required(),
			mcp.Description("Field value"),
		),
	)
}

// Handle processes the custom_field_set tool call.
func (t *CustomFieldSetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	name := req.GetString("field_name", "")
	value := req.GetString("field_value", "")
	if contactID == "" || name == "" || value == "" {
		return mcp.NewToolResultError("'contact_id', 'field_name' and 'field_value' are required"), nil
	}
	field, err := t.store.SetCustomField(t.userID, contactID, name, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set custom field: %v", err)), nil
	}
	return jsonResult(field), nil
}

// ─── CustomFieldListTool ────────────────────────────────────────────────────

// CustomFieldListTool handles the custom_field_list MCP tool.
type CustomFieldListTool struct {
	store  *crm.Store
	userID string
}

// NewCustomFieldListTool creates a CustomFieldListTool.
func NewCustomFieldListTool(store *crm.Store, userID string) *CustomFieldListTool {
	return &CustomFieldListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for custom_field_list.
func (t *CustomFieldListTool) Definition() mcp.Tool {
	return mcp.NewTool("custom_field_list",
		mcp.WithDescription("List the custom fields recorded on a contact."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the custom_field_list tool call.
func (t *CustomFieldListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	fields, err := t.store.ListCustomFields(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list custom fields: %v", err)), nil
	}
	return jsonResult(fields), nil
}

// ─── ReminderAddTool ────────────────────────────────────────────────────────

// ReminderAddTool handles the reminder_add MCP tool.
type ReminderAddTool struct {
	store  *crm.Store
	userID string
}

// NewReminderAddTool creates a ReminderAddTool.
func NewReminderAddTool(store *crm.Store, userID string) *ReminderAddTool {
	return &ReminderAddTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for reminder_add.
func (t *ReminderAddTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_add",
		mcp.WithDescription("Create a reminder tied to a contact, optionally recurring."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("What to be reminded of"),
		),
		mcp.WithString("due_at",
			mcp.Required(),
			mcp.Description("When the reminder is due (YYYY-MM-DD)"),
		),
		mcp.WithString("description", mcp.Description("Optional details")),
		mcp.WithString("recurring",
			mcp.Description("Recurrence: yearly, monthly, or weekly (omit for one-shot)"),
		),
	)
}

// Handle processes the reminder_add tool call.
func (t *ReminderAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	title := req.GetString("title", "")
	dueAt := req.GetString("due_at", "")
	if contactID == "" || title == "" || dueAt == "" {
		return mcp.NewToolResultError("'contact_id', 'title' and 'due_at' are required"), nil
	}
	reminder, err := t.store.AddReminder(t.userID, contactID, crm.AddReminderParams{
		Title:       title,
		Description: req.GetString("description", ""),
		DueAt:       dueAt,
		Recurring:   req.GetString("recurring", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}
	return jsonResult(reminder), nil
}

// ─── ReminderListTool ───────────────────────────────────────────────────────

// ReminderListTool handles the reminder_list MCP tool.
type ReminderListTool struct {
	store  *crm.Store
	userID string
}

// NewReminderListTool creates a ReminderListTool.
func NewReminderListTool(store *crm.Store, userID string) *ReminderListTool {
	return &ReminderListTool{store: store, userID: userID}
}

// Definition returns the MCP tool definition for reminder_list.
func (t *ReminderListTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_list",
		mcp.WithDescription("List the reminders tied to a contact, soonest first."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("Contact identifier"),
		),
	)
}

// Handle processes the reminder_list tool call.
func (t *ReminderListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID := req.GetString("contact_id", "")
	if contactID == "" {
		return mcp.NewToolResultError("'contact_id' is required"), nil
	}
	reminders, err := t.store.ListReminders(t.userID, contactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}
	return jsonResult(reminders), nil
}
