package crm

import (
	"fmt"
)

// Relationship is one direction of a bidirectional edge between two
// contacts. Every relationship is stored as an ordered pair of rows:
// (A, B, type) and (B, A, inverse(type)). The pair is created and
// deleted together; no single-direction row ever exists on its own.
type Relationship struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	ContactID        string `json:"contact_id"`
	RelatedContactID string `json:"related_contact_id"`
	Type             string `json:"type"`
	CreatedAt        string `json:"created_at"`
}

// inverseTypes maps asymmetric relationship types to their mirrored
// label. Types absent from the table are self-inverse.
var inverseTypes = map[string]string{
	"parent":       "child",
	"child":        "parent",
	"boss":         "subordinate",
	"subordinate":  "boss",
	"mentor":       "mentee",
	"mentee":       "mentor",
	"uncle_aunt":   "nephew_niece",
	"nephew_niece": "uncle_aunt",
	"godparent":    "godchild",
	"godchild":     "godparent",
}

// InverseType returns the label for the mirrored direction of a
// relationship type. Symmetric types (friend, spouse, sibling, ...)
// are their own inverse.
func InverseType(t string) string {
	if inv, ok := inverseTypes[t]; ok {
		return inv
	}
	return t
}

// CreateRelationship creates both directions of a relationship between
// two contacts atomically. Self-relationships and duplicate pairs are
// rejected.
func (s *Store) CreateRelationship(userID, contactID, relatedID, relType string) (*Relationship, error) {
	if relType == "" {
		return nil, fmt.Errorf("crm: relationship type is required")
	}
	if contactID == relatedID {
		return nil, fmt.Errorf("crm: cannot relate a contact to itself")
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	if _, err := s.GetContact(userID, relatedID); err != nil {
		return nil, err
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return nil, fmt.Errorf("crm: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := newID()
	if _, err := s.execHook(tx,
		`INSERT INTO relationships (id, user_id, contact_id, related_contact_id, type)
		 VALUES (?, ?, ?, ?, ?)`,
		id, userID, contactID, relatedID, relType,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("crm: relationship already exists between %s and %s", contactID, relatedID)
		}
		return nil, fmt.Errorf("crm: create relationship: %w", err)
	}
	if _, err := s.execHook(tx,
		`INSERT INTO relationships (id, user_id, contact_id, related_contact_id, type)
		 VALUES (?, ?, ?, ?, ?)`,
		newID(), userID, relatedID, contactID, InverseType(relType),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("crm: relationship already exists between %s and %s", relatedID, contactID)
		}
		return nil, fmt.Errorf("crm: create inverse relationship: %w", err)
	}
	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("crm: commit transaction: %w", err)
	}

	return &Relationship{
		ID: id, UserID: userID, ContactID: contactID,
		RelatedContactID: relatedID, Type: relType,
	}, nil
}

// DeleteRelationship removes both directions of a relationship.
func (s *Store) DeleteRelationship(userID, contactID, relatedID string) error {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return err
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return fmt.Errorf("crm: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := s.execHook(tx,
		`DELETE FROM relationships
		 WHERE user_id = ? AND contact_id = ? AND related_contact_id = ?`,
		userID, contactID, relatedID)
	if err != nil {
		return fmt.Errorf("crm: delete relationship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("crm: no relationship between %s and %s", contactID, relatedID)
	}
	if _, err := s.execHook(tx,
		`DELETE FROM relationships
		 WHERE user_id = ? AND contact_id = ? AND related_contact_id = ?`,
		userID, relatedID, contactID,
	); err != nil {
		return fmt.Errorf("crm: delete inverse relationship: %w", err)
	}
	return s.commitHook(tx)
}

// ListRelationships returns the outgoing relationship rows for a contact.
func (s *Store) ListRelationships(userID, contactID string) ([]Relationship, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, contact_id, related_contact_id, type, created_at
		 FROM relationships
		 WHERE user_id = ? AND contact_id = ?
		 ORDER BY created_at, id`, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list relationships: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.UserID, &r.ContactID, &r.RelatedContactID, &r.Type, &r.CreatedAt); err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
