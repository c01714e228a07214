package crm_test

import (
	"testing"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *crm.Store {
	t.Helper()
	s, err := crm.New(crm.Config{
		DataDir:        t.TempDir(),
		DuplicateLimit: 20,
		PageSize:       25,
	}, zap.NewNop())
	require.NoError(t, err, "create store")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedUser provisions a user (and its self-contact) for tests.
func seedUser(t *testing.T, s *crm.Store, id string) string {
	t.Helper()
	userID, err := s.EnsureUser(id, "Test User")
	require.NoError(t, err)
	return userID
}

// mkContact creates a contact with just a name.
func mkContact(t *testing.T, s *crm.Store, userID, first, last string) *crm.Contact {
	t.Helper()
	c, err := s.CreateContact(userID, crm.CreateContactParams{FirstName: first, LastName: last})
	require.NoError(t, err)
	return c
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestEnsureUser_BootstrapsSelfContact(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	contacts, total, err := s.ListContacts(userID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.True(t, contacts[0].IsMe, "bootstrap contact should be the self-record")
	assert.Equal(t, "Test User", contacts[0].FirstName)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u1")

	_, total, err := s.ListContacts("u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "re-provisioning must not add a second self-contact")
}

// ─── Contact CRUD ───────────────────────────────────────────────────────────

func TestCreateContact_RequiresFirstName(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	_, err := s.CreateContact(userID, crm.CreateContactParams{})
	assert.Error(t, err)
}

func TestCreateGetContact(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	c, err := s.CreateContact(userID, crm.CreateContactParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines",
		Status:    crm.StatusActive,
	})
	require.NoError(t, err)

	got, err := s.GetContact(userID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Lovelace", *got.LastName)
	require.NotNil(t, got.Company)
	assert.Equal(t, "Analytical Engines", *got.Company)
	assert.False(t, got.IsMe)
	assert.Equal(t, "Ada Lovelace", got.DisplayName())
}

func TestGetContact_ForeignOwnerLooksLikeMissing(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "u1")
	u2 := seedUser(t, s, "u2")
	c := mkContact(t, s, u1, "Ada", "Lovelace")

	_, err := s.GetContact(u2, c.ID)
	assert.ErrorIs(t, err, crm.ErrContactNotFound)
}

func TestUpdateContact_Partial(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	nickname := "The Countess"
	got, err := s.UpdateContact(userID, c.ID, crm.UpdateContactParams{Nickname: &nickname})
	require.NoError(t, err)
	require.NotNil(t, got.Nickname)
	assert.Equal(t, "The Countess", *got.Nickname)
	assert.Equal(t, "Ada", got.FirstName, "untouched fields keep their value")
}

func TestDeleteRestoreContact(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	require.NoError(t, s.DeleteContact(userID, c.ID))
	_, err := s.GetContact(userID, c.ID)
	assert.ErrorIs(t, err, crm.ErrContactNotFound, "soft-deleted contact reads as missing")

	restored, err := s.RestoreContact(userID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, "Ada", restored.FirstName)
}

func TestDeleteContact_TwiceFails(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	require.NoError(t, s.DeleteContact(userID, c.ID))
	assert.ErrorIs(t, s.DeleteContact(userID, c.ID), crm.ErrContactNotFound)
}

func TestListContacts_Pagination(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	for i := 0; i < 5; i++ {
		mkContact(t, s, userID, "Contact", string(rune('A'+i)))
	}

	// 5 created + 1 self-contact
	page, total, err := s.ListContacts(userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, page, 2)

	rest, total, err := s.ListContacts(userID, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, rest, 2)
}

// ─── Dependent entities ─────────────────────────────────────────────────────

func TestAddListNotes(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.AddNote(userID, c.ID, crm.AddNoteParams{Body: "met at a conference"})
	require.NoError(t, err)
	_, err = s.AddNote(userID, c.ID, crm.AddNoteParams{Title: "likes", Body: "good coffee"})
	require.NoError(t, err)

	notes, err := s.ListNotes(userID, c.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestAddNote_UnknownContact(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	_, err := s.AddNote(userID, "nope", crm.AddNoteParams{Body: "x"})
	assert.ErrorIs(t, err, crm.ErrContactNotFound)
}

func TestContactMethods(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.AddContactMethod(userID, c.ID, crm.AddContactMethodParams{Type: "email", Value: "ada@example.com", IsPrimary: true})
	require.NoError(t, err)
	_, err = s.AddContactMethod(userID, c.ID, crm.AddContactMethodParams{Type: "phone", Value: "+1-555-0100"})
	require.NoError(t, err)

	methods, err := s.ListContactMethods(userID, c.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "email", methods[0].Type)
	assert.True(t, methods[0].IsPrimary)
}

func TestFoodPreference_DedupesOnWrite(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	fp, err := s.SetFoodPreference(userID, c.ID, crm.SetFoodPreferenceParams{
		Allergies: []string{"peanuts", "peanuts", "shellfish"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"peanuts", "shellfish"}, fp.Allergies)
}

func TestFoodPreference_Upsert(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.SetFoodPreference(userID, c.ID, crm.SetFoodPreferenceParams{Allergies: []string{"peanuts"}})
	require.NoError(t, err)
	fp, err := s.SetFoodPreference(userID, c.ID, crm.SetFoodPreferenceParams{Allergies: []string{"shellfish"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"shellfish"}, fp.Allergies, "second set replaces the single row")

	var count int
	err = s.DB().QueryRow(`SELECT COUNT(*) FROM food_preferences WHERE contact_id = ?`, c.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "at most one food preference row per contact")
}

func TestCustomField_SetUpdatesExistingName(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.SetCustomField(userID, c.ID, "github", "ada")
	require.NoError(t, err)
	_, err = s.SetCustomField(userID, c.ID, "github", "countess-ada")
	require.NoError(t, err)

	fields, err := s.ListCustomFields(userID, c.ID)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "countess-ada", fields[0].FieldValue)
}

func TestTags_NoDuplicatePairs(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.TagContact(userID, c.ID, "friend")
	require.NoError(t, err)
	_, err = s.TagContact(userID, c.ID, "friend")
	require.NoError(t, err)

	tags, err := s.ListContactTags(userID, c.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTags_ReusedAcrossContacts(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	a := mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "Grace", "Hopper")

	t1, err := s.TagContact(userID, a.ID, "vip")
	require.NoError(t, err)
	t2, err := s.TagContact(userID, b.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, t1.ID, t2.ID, "tag names are unique per user and shared")
}

func TestAddReminder_Validation(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	c := mkContact(t, s, userID, "Ada", "Lovelace")

	_, err := s.AddReminder(userID, c.ID, crm.AddReminderParams{Title: "birthday"})
	assert.Error(t, err, "due_at is required")

	r, err := s.AddReminder(userID, c.ID, crm.AddReminderParams{
		Title: "birthday", DueAt: "2026-12-10", Recurring: "yearly",
	})
	require.NoError(t, err)
	assert.Equal(t, "birthday", r.Title)
}
