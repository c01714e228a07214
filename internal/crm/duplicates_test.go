package crm_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addEmail(t *testing.T, s *crm.Store, userID, contactID, value string) {
	t.Helper()
	_, err := s.AddContactMethod(userID, contactID, crm.AddContactMethodParams{Type: "email", Value: value})
	require.NoError(t, err)
}

func addPhone(t *testing.T, s *crm.Store, userID, contactID, value string) {
	t.Helper()
	_, err := s.AddContactMethod(userID, contactID, crm.AddContactMethodParams{Type: "phone", Value: value})
	require.NoError(t, err)
}

func TestFindDuplicates_Empty(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, matches)
}

func TestFindDuplicates_SameName(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	a := mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "ada", " LOVELACE ")
	mkContact(t, s, userID, "Grace", "Hopper")

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	m := matches[0]
	assert.Equal(t, "same name", m.Reason)
	assert.Equal(t, a.ID, m.ContactID1)
	assert.Equal(t, b.ID, m.ContactID2)
	assert.Equal(t, "Ada Lovelace", m.ContactName1)
}

func TestFindDuplicates_NameRequiresLastName(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	mkContact(t, s, userID, "Ada", "")
	mkContact(t, s, userID, "Ada", "")

	_, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Zero(t, total, "a shared first name alone is not evidence of duplication")
}

func TestFindDuplicates_SameEmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	a := mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "Countess", "Byron")
	addEmail(t, s, userID, a.ID, "Ada@Example.com")
	addEmail(t, s, userID, b.ID, "ada@example.com")

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "same email: ada@example.com", matches[0].Reason)
}

func TestFindDuplicates_PhoneNormalization(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	a := mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "Countess", "Byron")
	addPhone(t, s, userID, a.ID, "+1-555-0123")
	addPhone(t, s, userID, b.ID, "15550123")

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Contains(t, matches[0].Reason, "same phone")
	assert.Contains(t, matches[0].Reason, "15550123")
}

func TestFindDuplicates_MultipleReasonsPerPair(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	a := mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "Ada", "Lovelace")
	addEmail(t, s, userID, a.ID, "ada@example.com")
	addEmail(t, s, userID, b.ID, "ada@example.com")
	addPhone(t, s, userID, a.ID, "555-0123")
	addPhone(t, s, userID, b.ID, "(555) 0123")

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "one match row per (pair, reason)")

	reasons := make([]string, len(matches))
	for i, m := range matches {
		reasons[i] = m.Reason
	}
	assert.Equal(t, "same name", reasons[0])
	assert.True(t, strings.HasPrefix(reasons[1], "same email:"))
	assert.True(t, strings.HasPrefix(reasons[2], "same phone:"))
}

func TestFindDuplicates_CapAt20WithFullTotal(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")

	for i := 0; i < 25; i++ {
		last := fmt.Sprintf("Pair%02d", i)
		mkContact(t, s, userID, "Dup", last)
		mkContact(t, s, userID, "Dup", last)
	}

	matches, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, matches, 20)
}

func TestFindDuplicates_IgnoresSoftDeleted(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	mkContact(t, s, userID, "Ada", "Lovelace")
	b := mkContact(t, s, userID, "Ada", "Lovelace")
	require.NoError(t, s.DeleteContact(userID, b.ID))

	_, total, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFindDuplicates_NeverCrossesUsers(t *testing.T) {
	s := newTestStore(t)
	u1 := seedUser(t, s, "u1")
	u2 := seedUser(t, s, "u2")
	mkContact(t, s, u1, "Ada", "Lovelace")
	mkContact(t, s, u2, "Ada", "Lovelace")

	_, total, err := s.FindDuplicates(u1)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFindDuplicates_StableOrder(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "u1")
	mkContact(t, s, userID, "Ada", "Lovelace")
	mkContact(t, s, userID, "Ada", "Lovelace")
	mkContact(t, s, userID, "Grace", "Hopper")
	mkContact(t, s, userID, "Grace", "Hopper")

	first, _, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	second, _, err := s.FindDuplicates(userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
