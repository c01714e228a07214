package crm

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Dependent entities are scoped to a contact via contact_id, except
// Activity which belongs to the user and references contacts through
// the activity_participants join.

// ContactMethod types used by the duplicate detector.
const (
	MethodEmail = "email"
	MethodPhone = "phone"
)

// Note is a free-form text entry attached to a contact.
type Note struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contact_id"`
	Title     *string `json:"title,omitempty"`
	Body      string  `json:"body"`
	Pinned    bool    `json:"pinned"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ContactMethod is a way to reach a contact (email, phone, ...).
type ContactMethod struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contact_id"`
	Type      string  `json:"type"`
	Value     string  `json:"value"`
	Label     *string `json:"label,omitempty"`
	IsPrimary bool    `json:"is_primary"`
	CreatedAt string  `json:"created_at"`
}

// Address is a postal address attached to a contact.
type Address struct {
	ID         string  `json:"id"`
	ContactID  string  `json:"contact_id"`
	Label      *string `json:"label,omitempty"`
	Street     *string `json:"street,omitempty"`
	City       *string `json:"city,omitempty"`
	Province   *string `json:"province,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// FoodPreference holds at most one row per contact. The four list fields
// behave as sets: duplicates are removed on every write, which keeps the
// merge-time union a plain set union.
type FoodPreference struct {
	ID                  string   `json:"id"`
	ContactID           string   `json:"contact_id"`
	Allergies           []string `json:"allergies"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	FavoriteFoods       []string `json:"favorite_foods"`
	DislikedFoods       []string `json:"disliked_foods"`
	Notes               *string  `json:"notes,omitempty"`
}

// CustomField is a user-defined key/value on a contact. Unique field_name
// per contact is a soft convention, not a DB constraint.
type CustomField struct {
	ID         string `json:"id"`
	ContactID  string `json:"contact_id"`
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
}

// Reminder is a dated prompt attached to a contact.
type Reminder struct {
	ID          string  `json:"id"`
	ContactID   string  `json:"contact_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueAt       string  `json:"due_at"`
	Recurring   *string `json:"recurring,omitempty"`
}

// Gift tracks a gift idea or given gift for a contact.
type Gift struct {
	ID          string  `json:"id"`
	ContactID   string  `json:"contact_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	Occasion    *string `json:"occasion,omitempty"`
}

// Debt tracks money owed between the user and a contact.
type Debt struct {
	ID          string  `json:"id"`
	ContactID   string  `json:"contact_id"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Direction   string  `json:"direction"`
	Description *string `json:"description,omitempty"`
	Settled     bool    `json:"settled"`
}

// Task is a to-do item attached to a contact.
type Task struct {
	ID          string  `json:"id"`
	ContactID   string  `json:"contact_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// LifeEvent records a dated milestone for a contact, optionally linking
// other contacts as related parties through life_event_contacts.
type LifeEvent struct {
	ID          string   `json:"id"`
	ContactID   string   `json:"contact_id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	HappenedAt  *string  `json:"happened_at,omitempty"`
	RelatedIDs  []string `json:"related_contact_ids,omitempty"`
}

// Activity records something the user did with one or more contacts.
type Activity struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	HappenedAt     *string  `json:"happened_at,omitempty"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// ─── Notes ───────────────────────────────────────────────────────────────────

// AddNoteParams holds the input for creating a note.
type AddNoteParams struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body" validate:"required"`
}

// AddNote creates a note on a contact owned by userID.
func (s *Store) AddNote(userID, contactID string, p AddNoteParams) (*Note, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("crm: invalid note: %w", err)
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}

	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO notes (id, contact_id, title, body) VALUES (?, ?, ?, ?)`,
		id, contactID, nullableString(p.Title), p.Body,
	); err != nil {
		return nil, fmt.Errorf("crm: add note: %w", err)
	}

	n := &Note{ID: id, ContactID: contactID, Title: nullableString(p.Title), Body: p.Body}
	return n, nil
}

// ListNotes returns the active notes on a contact, newest first.
func (s *Store) ListNotes(userID, contactID string) ([]Note, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, contact_id, title, body, pinned, created_at, updated_at
		 FROM notes WHERE contact_id = ? AND deleted_at IS NULL
		 ORDER BY pinned DESC, created_at DESC`, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var pinned int
		if err := rows.Scan(&n.ID, &n.ContactID, &n.Title, &n.Body, &pinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.Pinned = pinned != 0
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ─── Contact methods ─────────────────────────────────────────────────────────

// AddContactMethodParams holds the input for creating a contact method.
type AddContactMethodParams struct {
	Type      string `json:"type" validate:"required"`
	Value     string `json:"value" validate:"required"`
	Label     string `json:"label,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// AddContactMethod creates an email/phone/other method on a contact.
func (s *Store) AddContactMethod(userID, contactID string, p AddContactMethodParams) (*ContactMethod, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("crm: invalid contact method: %w", err)
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}

	id := newID()
	isPrimary := 0
	if p.IsPrimary {
		isPrimary = 1
	}
	if _, err := s.execHook(s.db,
		`INSERT INTO contact_methods (id, contact_id, type, value, label, is_primary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, contactID, p.Type, p.Value, nullableString(p.Label), isPrimary,
	); err != nil {
		return nil, fmt.Errorf("crm: add contact method: %w", err)
	}

	return &ContactMethod{
		ID: id, ContactID: contactID, Type: p.Type, Value: p.Value,
		Label: nullableString(p.Label), IsPrimary: p.IsPrimary,
	}, nil
}

// ListContactMethods returns the active methods on a contact.
func (s *Store) ListContactMethods(userID, contactID string) ([]ContactMethod, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, contact_id, type, value, label, is_primary, created_at
		 FROM contact_methods WHERE contact_id = ? AND deleted_at IS NULL
		 ORDER BY created_at, id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list contact methods: %w", err)
	}
	defer rows.Close()

	var methods []ContactMethod
	for rows.Next() {
		var m ContactMethod
		var isPrimary int
		if err := rows.Scan(&m.ID, &m.ContactID, &m.Type, &m.Value, &m.Label, &isPrimary, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.IsPrimary = isPrimary != 0
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// ─── Addresses ───────────────────────────────────────────────────────────────

// AddAddressParams holds the input for creating an address.
type AddAddressParams struct {
	Label      string `json:"label,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// AddAddress creates an address on a contact.
func (s *Store) AddAddress(userID, contactID string, p AddAddressParams) (*Address, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO addresses (id, contact_id, label, street, city, province, postal_code, country)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, contactID, nullableString(p.Label), nullableString(p.Street), nullableString(p.City),
		nullableString(p.Province), nullableString(p.PostalCode), nullableString(p.Country),
	); err != nil {
		return nil, fmt.Errorf("crm: add address: %w", err)
	}
	return &Address{
		ID: id, ContactID: contactID,
		Label: nullableString(p.Label), Street: nullableString(p.Street), City: nullableString(p.City),
		Province: nullableString(p.Province), PostalCode: nullableString(p.PostalCode), Country: nullableString(p.Country),
	}, nil
}

// ─── Food preferences ────────────────────────────────────────────────────────

// SetFoodPreferenceParams holds the input for setting a contact's food
// preference row (upsert).
type SetFoodPreferenceParams struct {
	Allergies           []string `json:"allergies,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	FavoriteFoods       []string `json:"favorite_foods,omitempty"`
	DislikedFoods       []string `json:"disliked_foods,omitempty"`
	Notes               string   `json:"notes,omitempty"`
}

// SetFoodPreference creates or replaces the single food preference row
// for a contact. List fields are deduplicated before writing.
func (s *Store) SetFoodPreference(userID, contactID string, p SetFoodPreferenceParams) (*FoodPreference, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}

	allergies := dedupeList(p.Allergies)
	dietary := dedupeList(p.DietaryRestrictions)
	favorite := dedupeList(p.FavoriteFoods)
	disliked := dedupeList(p.DislikedFoods)

	if _, err := s.execHook(s.db,
		`INSERT INTO food_preferences (id, contact_id, allergies, dietary_restrictions, favorite_foods, disliked_foods, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(contact_id) DO UPDATE SET
			allergies = excluded.allergies,
			dietary_restrictions = excluded.dietary_restrictions,
			favorite_foods = excluded.favorite_foods,
			disliked_foods = excluded.disliked_foods,
			notes = excluded.notes,
			updated_at = datetime('now')`,
		newID(), contactID,
		encodeList(allergies), encodeList(dietary), encodeList(favorite), encodeList(disliked),
		nullableString(p.Notes),
	); err != nil {
		return nil, fmt.Errorf("crm: set food preference: %w", err)
	}

	return s.GetFoodPreference(userID, contactID)
}

// GetFoodPreference returns the contact's food preference row, or nil if
// the contact has none.
func (s *Store) GetFoodPreference(userID, contactID string) (*FoodPreference, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	fp, err := s.foodPreferenceByContact(s.db, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: get food preference: %w", err)
	}
	return fp, nil
}

func (s *Store) foodPreferenceByContact(db queryer, contactID string) (*FoodPreference, error) {
	row := db.QueryRow(
		`SELECT id, contact_id, allergies, dietary_restrictions, favorite_foods, disliked_foods, notes
		 FROM food_preferences WHERE contact_id = ?`, contactID)

	var fp FoodPreference
	var allergies, dietary, favorite, disliked string
	err := row.Scan(&fp.ID, &fp.ContactID, &allergies, &dietary, &favorite, &disliked, &fp.Notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fp.Allergies = decodeList(allergies)
	fp.DietaryRestrictions = decodeList(dietary)
	fp.FavoriteFoods = decodeList(favorite)
	fp.DislikedFoods = decodeList(disliked)
	return &fp, nil
}

// ─── Custom fields ───────────────────────────────────────────────────────────

// SetCustomField creates a custom field, or updates the value of the
// newest existing field with the same name.
func (s *Store) SetCustomField(userID, contactID, name, value string) (*CustomField, error) {
	if name == "" {
		return nil, fmt.Errorf("crm: field name is required")
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}

	var existingID string
	err := s.db.QueryRow(
		`SELECT id FROM custom_fields WHERE contact_id = ? AND field_name = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, contactID, name,
	).Scan(&existingID)
	switch {
	case err == nil:
		if _, err := s.execHook(s.db,
			`UPDATE custom_fields SET field_value = ?, updated_at = datetime('now') WHERE id = ?`,
			value, existingID,
		); err != nil {
			return nil, fmt.Errorf("crm: update custom field: %w", err)
		}
		return &CustomField{ID: existingID, ContactID: contactID, FieldName: name, FieldValue: value}, nil
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("crm: lookup custom field: %w", err)
	}

	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO custom_fields (id, contact_id, field_name, field_value) VALUES (?, ?, ?, ?)`,
		id, contactID, name, value,
	); err != nil {
		return nil, fmt.Errorf("crm: add custom field: %w", err)
	}
	return &CustomField{ID: id, ContactID: contactID, FieldName: name, FieldValue: value}, nil
}

// ListCustomFields returns a contact's custom fields in creation order.
func (s *Store) ListCustomFields(userID, contactID string) ([]CustomField, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, contact_id, field_name, field_value
		 FROM custom_fields WHERE contact_id = ? ORDER BY created_at, id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list custom fields: %w", err)
	}
	defer rows.Close()

	var fields []CustomField
	for rows.Next() {
		var f CustomField
		if err := rows.Scan(&f.ID, &f.ContactID, &f.FieldName, &f.FieldValue); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ─── Reminders / gifts / debts / tasks ───────────────────────────────────────

// AddReminderParams holds the input for creating a reminder.
type AddReminderParams struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	DueAt       string `json:"due_at" validate:"required"`
	Recurring   string `json:"recurring,omitempty" validate:"omitempty,oneof=yearly monthly weekly"`
}

// AddReminder creates a reminder on a contact.
func (s *Store) AddReminder(userID, contactID string, p AddReminderParams) (*Reminder, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("crm: invalid reminder: %w", err)
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO reminders (id, contact_id, title, description, due_at, recurring)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, contactID, p.Title, nullableString(p.Description), p.DueAt, nullableString(p.Recurring),
	); err != nil {
		return nil, fmt.Errorf("crm: add reminder: %w", err)
	}
	return &Reminder{
		ID: id, ContactID: contactID, Title: p.Title,
		Description: nullableString(p.Description), DueAt: p.DueAt, Recurring: nullableString(p.Recurring),
	}, nil
}

// ListReminders returns the active reminders on a contact ordered by due date.
func (s *Store) ListReminders(userID, contactID string) ([]Reminder, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, contact_id, title, description, due_at, recurring
		 FROM reminders WHERE contact_id = ? AND deleted_at IS NULL
		 ORDER BY due_at, id`, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.ContactID, &r.Title, &r.Description, &r.DueAt, &r.Recurring); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// AddGift creates a gift entry on a contact.
func (s *Store) AddGift(userID, contactID, name, description, status, occasion string) (*Gift, error) {
	if name == "" {
		return nil, fmt.Errorf("crm: gift name is required")
	}
	if status == "" {
		status = "idea"
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO gifts (id, contact_id, name, description, status, occasion)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, contactID, name, nullableString(description), status, nullableString(occasion),
	); err != nil {
		return nil, fmt.Errorf("crm: add gift: %w", err)
	}
	return &Gift{ID: id, ContactID: contactID, Name: name, Description: nullableString(description), Status: status, Occasion: nullableString(occasion)}, nil
}

// AddDebt creates a debt entry on a contact. Direction is either
// "owed_to_me" or "i_owe".
func (s *Store) AddDebt(userID, contactID string, amountCents int64, currency, direction, description string) (*Debt, error) {
	if direction != "owed_to_me" && direction != "i_owe" {
		return nil, fmt.Errorf("crm: debt direction must be owed_to_me or i_owe")
	}
	if currency == "" {
		currency = "USD"
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO debts (id, contact_id, amount_cents, currency, direction, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, contactID, amountCents, currency, direction, nullableString(description),
	); err != nil {
		return nil, fmt.Errorf("crm: add debt: %w", err)
	}
	return &Debt{ID: id, ContactID: contactID, AmountCents: amountCents, Currency: currency, Direction: direction, Description: nullableString(description)}, nil
}

// AddTask creates a task on a contact.
func (s *Store) AddTask(userID, contactID, title, description string) (*Task, error) {
	if title == "" {
		return nil, fmt.Errorf("crm: task title is required")
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO tasks (id, contact_id, title, description) VALUES (?, ?, ?, ?)`,
		id, contactID, title, nullableString(description),
	); err != nil {
		return nil, fmt.Errorf("crm: add task: %w", err)
	}
	return &Task{ID: id, ContactID: contactID, Title: title, Description: nullableString(description)}, nil
}

// ─── Life events / activities ────────────────────────────────────────────────

// AddLifeEvent creates a life event on a contact, linking optional
// related contacts through the join table.
func (s *Store) AddLifeEvent(userID, contactID, eventType, title, description, happenedAt string, relatedIDs []string) (*LifeEvent, error) {
	if eventType == "" || title == "" {
		return nil, fmt.Errorf("crm: life event type and title are required")
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	for _, rid := range relatedIDs {
		if _, err := s.GetContact(userID, rid); err != nil {
			return nil, err
		}
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return nil, fmt.Errorf("crm: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := newID()
	if _, err := s.execHook(tx,
		`INSERT INTO life_events (id, contact_id, type, title, description, happened_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, contactID, eventType, title, nullableString(description), nullableString(happenedAt),
	); err != nil {
		return nil, fmt.Errorf("crm: add life event: %w", err)
	}
	for _, rid := range relatedIDs {
		if _, err := s.execHook(tx,
			`INSERT OR IGNORE INTO life_event_contacts (life_event_id, contact_id) VALUES (?, ?)`,
			id, rid,
		); err != nil {
			return nil, fmt.Errorf("crm: link life event contact: %w", err)
		}
	}
	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("crm: commit transaction: %w", err)
	}

	return &LifeEvent{
		ID: id, ContactID: contactID, Type: eventType, Title: title,
		Description: nullableString(description), HappenedAt: nullableString(happenedAt),
		RelatedIDs: relatedIDs,
	}, nil
}

// AddActivity creates an activity with its participant joins.
func (s *Store) AddActivity(userID, title, description, happenedAt string, participantIDs []string) (*Activity, error) {
	if title == "" {
		return nil, fmt.Errorf("crm: activity title is required")
	}
	for _, pid := range participantIDs {
		if _, err := s.GetContact(userID, pid); err != nil {
			return nil, err
		}
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return nil, fmt.Errorf("crm: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := newID()
	if _, err := s.execHook(tx,
		`INSERT INTO activities (id, user_id, title, description, happened_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, title, nullableString(description), nullableString(happenedAt),
	); err != nil {
		return nil, fmt.Errorf("crm: add activity: %w", err)
	}
	for _, pid := range participantIDs {
		if _, err := s.execHook(tx,
			`INSERT OR IGNORE INTO activity_participants (activity_id, contact_id) VALUES (?, ?)`,
			id, pid,
		); err != nil {
			return nil, fmt.Errorf("crm: link activity participant: %w", err)
		}
	}
	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("crm: commit transaction: %w", err)
	}

	return &Activity{
		ID: id, UserID: userID, Title: title,
		Description: nullableString(description), HappenedAt: nullableString(happenedAt),
		ParticipantIDs: participantIDs,
	}, nil
}

// ─── List encoding ───────────────────────────────────────────────────────────

// encodeList serializes a string set as a JSON array for storage.
func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// decodeList parses a stored JSON array. Corrupt values decode as empty.
func decodeList(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// dedupeList removes duplicates while preserving first-seen order.
func dedupeList(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// unionLists returns the deduplicated union of two sets, keeping the
// first set's order followed by new elements from the second.
func unionLists(a, b []string) []string {
	return dedupeList(append(append([]string{}, a...), b...))
}
