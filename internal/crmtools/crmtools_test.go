package crmtools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestStore creates a crm.Store in a temp directory and seeds a user.
func newTestStore(t *testing.T) (*crm.Store, string) {
	t.Helper()
	store, err := crm.New(crm.Config{
		DataDir:        t.TempDir(),
		DuplicateLimit: 20,
		PageSize:       25,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	userID, err := store.EnsureUser("test-user", "Test User")
	if err != nil {
		t.Fatalf("failed to ensure user: %v", err)
	}
	return store, userID
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// mustNotError asserts the Handle call succeeded.
func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
}

// mustBeToolError asserts the Handle call returns a tool error (not a Go error).
func mustBeToolError(t *testing.T, r *mcp.CallToolResult, err error, wantSubstr string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !r.IsError {
		t.Fatalf("expected tool error containing %q, got success: %s", wantSubstr, resultText(r))
	}
	if wantSubstr != "" && !strings.Contains(resultText(r), wantSubstr) {
		t.Errorf("error text %q does not contain %q", resultText(r), wantSubstr)
	}
}

// createContact creates a contact through the create tool and returns its id.
func createContact(t *testing.T, store *crm.Store, userID string, args map[string]interface{}) string {
	t.Helper()
	tool := NewContactCreateTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(args))
	mustNotError(t, result, err)

	var contact struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &contact); err != nil {
		t.Fatalf("result is not valid contact JSON: %v", err)
	}
	if contact.ID == "" {
		t.Fatal("created contact has no id")
	}
	return contact.ID
}

// ─── Contact tools ───────────────────────────────────────────────────────────

func TestContactCreateTool_Definition(t *testing.T) {
	store, userID := newTestStore(t)
	def := NewContactCreateTool(store, userID).Definition()

	if def.Name != "contact_create" {
		t.Errorf("tool name = %q, want %q", def.Name, "contact_create")
	}
	props := def.InputSchema.Properties
	for _, p := range []string{"first_name", "last_name", "status", "birthday_month", "company"} {
		if _, ok := props[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	found := false
	for _, r := range def.InputSchema.Required {
		if r == "first_name" {
			found = true
		}
	}
	if !found {
		t.Error("'first_name' should be required")
	}
}

func TestContactCreateTool_MissingFirstName(t *testing.T) {
	store, userID := newTestStore(t)
	tool := NewContactCreateTool(store, userID)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"last_name": "Lovelace",
	}))
	mustBeToolError(t, result, err, "first_name")
}

func TestContactCreateAndGet(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"company":    "Analytical Engines Ltd",
	})

	getTool := NewContactGetTool(store, userID)
	result, err := getTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "Ada") || !strings.Contains(text, "Analytical Engines Ltd") {
		t.Errorf("get result missing contact data: %s", text)
	}
}

func TestContactGetTool_Unknown(t *testing.T) {
	store, userID := newTestStore(t)
	tool := NewContactGetTool(store, userID)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": "nope",
	}))
	mustBeToolError(t, result, err, "failed to get contact")
}

func TestContactUpdateTool_PartialUpdate(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{
		"first_name": "Ada",
		"company":    "Analytical Engines Ltd",
	})

	tool := NewContactUpdateTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"job_title":  "Mathematician",
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "Mathematician") {
		t.Errorf("update should set job_title, got: %s", text)
	}
	if !strings.Contains(text, "Analytical Engines Ltd") {
		t.Errorf("update should not touch unrelated fields, got: %s", text)
	}
}

func TestContactListTool_Shape(t *testing.T) {
	store, userID := newTestStore(t)
	createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})
	createContact(t, store, userID, map[string]interface{}{"first_name": "Grace"})

	tool := NewContactListTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustNotError(t, result, err)

	var page struct {
		Data  []crm.Contact `json:"data"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &page); err != nil {
		t.Fatalf("result is not valid page JSON: %v", err)
	}
	// EnsureUser bootstraps a self-contact, so two creates make three.
	if page.Total != 3 {
		t.Errorf("total = %d, want 3", page.Total)
	}
	if len(page.Data) != 3 {
		t.Errorf("len(data) = %d, want 3", len(page.Data))
	}
}

func TestContactDeleteAndRestore(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	delTool := NewContactDeleteTool(store, userID)
	result, err := delTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "deleted") {
		t.Errorf("delete response: %s", resultText(result))
	}

	getTool := NewContactGetTool(store, userID)
	result, err = getTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustBeToolError(t, result, err, "")

	restoreTool := NewContactRestoreTool(store, userID)
	result, err = restoreTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "Ada") {
		t.Errorf("restore should return the contact, got: %s", resultText(result))
	}
}

// ─── Merge & duplicates tools ────────────────────────────────────────────────

func TestContactMergeTool_SelfMerge(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	tool := NewContactMergeTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"primary_contact_id":   id,
		"secondary_contact_id": id,
	}))
	mustBeToolError(t, result, err, "itself")
}

func TestContactMergeTool_NotFound(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	tool := NewContactMergeTool(store, userID)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"primary_contact_id":   "ghost",
		"secondary_contact_id": id,
	}))
	mustBeToolError(t, result, err, "primary contact ghost not found")

	result, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"primary_contact_id":   id,
		"secondary_contact_id": "ghost",
	}))
	mustBeToolError(t, result, err, "secondary contact ghost not found")
}

func TestContactMergeTool_Success(t *testing.T) {
	store, userID := newTestStore(t)
	primary := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})
	secondary := createContact(t, store, userID, map[string]interface{}{
		"first_name": "Ada",
		"job_title":  "Mathematician",
	})
	if _, err := store.AddNote(userID, secondary, crm.AddNoteParams{Body: "met at the salon"}); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	tool := NewContactMergeTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"primary_contact_id":   primary,
		"secondary_contact_id": secondary,
	}))
	mustNotError(t, result, err)

	var payload struct {
		Contact crm.Contact    `json:"contact"`
		Summary map[string]int `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &payload); err != nil {
		t.Fatalf("result is not valid merge JSON: %v", err)
	}
	if payload.Contact.ID != primary {
		t.Errorf("merged contact id = %s, want %s", payload.Contact.ID, primary)
	}
	if payload.Summary == nil {
		t.Fatal("result must carry the per-table counts under 'summary'")
	}
	if payload.Summary["notes"] != 1 {
		t.Errorf("summary notes = %d, want 1", payload.Summary["notes"])
	}
	if payload.Summary["fields_copied"] != 1 {
		t.Errorf("fields_copied = %d, want 1 (job_title)", payload.Summary["fields_copied"])
	}
}

func TestFindDuplicatesTool_EmptyShape(t *testing.T) {
	store, userID := newTestStore(t)
	tool := NewFindDuplicatesTool(store, userID)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustNotError(t, result, err)

	var payload struct {
		Data  []crm.DuplicateMatch `json:"data"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if payload.Total != 0 {
		t.Errorf("total = %d, want 0", payload.Total)
	}
	if payload.Data == nil {
		t.Error("data should be an empty array, not null")
	}
}

func TestFindDuplicatesTool_ReportsMatch(t *testing.T) {
	store, userID := newTestStore(t)
	createContact(t, store, userID, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})
	createContact(t, store, userID, map[string]interface{}{"first_name": "Ada", "last_name": "Lovelace"})

	tool := NewFindDuplicatesTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "same name") {
		t.Errorf("expected a 'same name' match, got: %s", text)
	}
}

// ─── Note & contact method tools ─────────────────────────────────────────────

func TestNoteTools(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	addTool := NewNoteAddTool(store, userID)
	result, err := addTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"title":      "First meeting",
		"body":       "Met at the Analytical Society dinner",
	}))
	mustNotError(t, result, err)

	listTool := NewNoteListTool(store, userID)
	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "Analytical Society") {
		t.Errorf("note list missing note body: %s", resultText(result))
	}
}

func TestNoteAddTool_MissingBody(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	tool := NewNoteAddTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustBeToolError(t, result, err, "body")
}

func TestContactMethodTools(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	addTool := NewContactMethodAddTool(store, userID)
	result, err := addTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"type":       "email",
		"value":      "ada@example.com",
		"is_primary": true,
	}))
	mustNotError(t, result, err)

	listTool := NewContactMethodListTool(store, userID)
	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "ada@example.com") {
		t.Errorf("method list missing value: %s", resultText(result))
	}
}

// ─── Tag tools ───────────────────────────────────────────────────────────────

func TestTagTools_RoundTrip(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	addTool := NewTagAddTool(store, userID)
	for _, name := range []string{"friend", "mathematician"} {
		result, err := addTool.Handle(context.Background(), makeReq(map[string]interface{}{
			"contact_id": id,
			"name":       name,
		}))
		mustNotError(t, result, err)
	}

	listTool := NewTagListTool(store, userID)
	result, err := listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	text := resultText(result)
	if !strings.Contains(text, "friend") || !strings.Contains(text, "mathematician") {
		t.Errorf("tag list missing tags: %s", text)
	}

	removeTool := NewTagRemoveTool(store, userID)
	result, err = removeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"name":       "friend",
	}))
	mustNotError(t, result, err)

	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if strings.Contains(resultText(result), "friend") {
		t.Errorf("removed tag still listed: %s", resultText(result))
	}
}

// ─── Relationship tools ──────────────────────────────────────────────────────

func TestRelationshipTools_RoundTrip(t *testing.T) {
	store, userID := newTestStore(t)
	parent := createContact(t, store, userID, map[string]interface{}{"first_name": "Anne"})
	child := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	addTool := NewRelationshipAddTool(store, userID)
	result, err := addTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":         parent,
		"related_contact_id": child,
		"type":               "parent",
	}))
	mustNotError(t, result, err)

	listTool := NewRelationshipListTool(store, userID)
	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": child,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "child") {
		t.Errorf("inverse relationship missing: %s", resultText(result))
	}

	removeTool := NewRelationshipRemoveTool(store, userID)
	result, err = removeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":         parent,
		"related_contact_id": child,
	}))
	mustNotError(t, result, err)

	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": child,
	}))
	mustNotError(t, result, err)
	if strings.Contains(resultText(result), "child") {
		t.Errorf("relationship survived removal: %s", resultText(result))
	}
}

func TestRelationshipAddTool_MissingType(t *testing.T) {
	store, userID := newTestStore(t)
	a := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})
	b := createContact(t, store, userID, map[string]interface{}{"first_name": "Grace"})

	tool := NewRelationshipAddTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":         a,
		"related_contact_id": b,
	}))
	mustBeToolError(t, result, err, "type")
}

// ─── Preference & reminder tools ─────────────────────────────────────────────

func TestFoodPreferenceTools(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	setTool := NewFoodPreferenceSetTool(store, userID)
	result, err := setTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":     id,
		"allergies":      []interface{}{"peanuts", "peanuts", "shellfish"},
		"favorite_foods": []interface{}{"curry"},
		"notes":          "asks for extra spicy",
	}))
	mustNotError(t, result, err)

	getTool := NewFoodPreferenceGetTool(store, userID)
	result, err = getTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)

	var pref crm.FoodPreference
	if err := json.Unmarshal([]byte(resultText(result)), &pref); err != nil {
		t.Fatalf("result is not valid food preference JSON: %v", err)
	}
	if len(pref.Allergies) != 2 {
		t.Errorf("allergies = %v, want deduplicated pair", pref.Allergies)
	}
	if len(pref.FavoriteFoods) != 1 || pref.FavoriteFoods[0] != "curry" {
		t.Errorf("favorite_foods = %v, want [curry]", pref.FavoriteFoods)
	}
}

func TestFoodPreferenceGetTool_NoneRecorded(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	tool := NewFoodPreferenceGetTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "No food preferences") {
		t.Errorf("expected 'none recorded' message, got: %s", resultText(result))
	}
}

func TestCustomFieldTools(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	setTool := NewCustomFieldSetTool(store, userID)
	result, err := setTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":  id,
		"field_name":  "github",
		"field_value": "ada-l",
	}))
	mustNotError(t, result, err)

	// Setting the same name again updates, not duplicates.
	result, err = setTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id":  id,
		"field_name":  "github",
		"field_value": "countess",
	}))
	mustNotError(t, result, err)

	listTool := NewCustomFieldListTool(store, userID)
	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)

	var fields []crm.CustomField
	if err := json.Unmarshal([]byte(resultText(result)), &fields); err != nil {
		t.Fatalf("result is not valid custom field JSON: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("len(fields) = %d, want 1", len(fields))
	}
	if fields[0].FieldValue != "countess" {
		t.Errorf("field value = %s, want countess", fields[0].FieldValue)
	}
}

func TestReminderTools(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	addTool := NewReminderAddTool(store, userID)
	result, err := addTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"title":      "Birthday",
		"due_at":     "2026-12-10",
		"recurring":  "yearly",
	}))
	mustNotError(t, result, err)

	listTool := NewReminderListTool(store, userID)
	result, err = listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "Birthday") {
		t.Errorf("reminder list missing reminder: %s", resultText(result))
	}
}

func TestReminderAddTool_BadRecurring(t *testing.T) {
	store, userID := newTestStore(t)
	id := createContact(t, store, userID, map[string]interface{}{"first_name": "Ada"})

	tool := NewReminderAddTool(store, userID)
	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"contact_id": id,
		"title":      "Birthday",
		"due_at":     "2026-12-10",
		"recurring":  "hourly",
	}))
	mustBeToolError(t, result, err, "failed to add reminder")
}
