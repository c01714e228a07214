package crm

import (
	"database/sql"
	"fmt"
	"strings"
)

// Tag is a user-scoped label shared across contacts through the
// contact_tags join. Names are unique per user and reused on tagging.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// TagContact attaches a tag (by name, created if missing) to a contact.
// Tagging twice with the same name is a no-op.
func (s *Store) TagContact(userID, contactID, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("crm: tag name is required")
	}
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}

	tag, err := s.tagByName(userID, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		tag = &Tag{ID: newID(), UserID: userID, Name: name}
		if _, err := s.execHook(s.db,
			`INSERT INTO tags (id, user_id, name) VALUES (?, ?, ?)`,
			tag.ID, userID, name,
		); err != nil {
			return nil, fmt.Errorf("crm: create tag: %w", err)
		}
	}

	if _, err := s.execHook(s.db,
		`INSERT OR IGNORE INTO contact_tags (contact_id, tag_id) VALUES (?, ?)`,
		contactID, tag.ID,
	); err != nil {
		return nil, fmt.Errorf("crm: tag contact: %w", err)
	}
	return tag, nil
}

// UntagContact removes a tag from a contact. The tag row itself is kept
// for reuse even when no contact carries it anymore.
func (s *Store) UntagContact(userID, contactID, name string) error {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return err
	}
	tag, err := s.tagByName(userID, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if tag == nil {
		return nil
	}
	_, err = s.execHook(s.db,
		`DELETE FROM contact_tags WHERE contact_id = ? AND tag_id = ?`, contactID, tag.ID)
	if err != nil {
		return fmt.Errorf("crm: untag contact: %w", err)
	}
	return nil
}

// ListContactTags returns the tags on a contact in name order.
func (s *Store) ListContactTags(userID, contactID string) ([]Tag, error) {
	if _, err := s.GetContact(userID, contactID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT t.id, t.user_id, t.name
		 FROM tags t
		 JOIN contact_tags ct ON ct.tag_id = t.id
		 WHERE ct.contact_id = ?
		 ORDER BY t.name`, contactID)
	if err != nil {
		return nil, fmt.Errorf("crm: list contact tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) tagByName(userID, name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRow(
		`SELECT id, user_id, name FROM tags WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("crm: lookup tag: %w", err)
	}
	return &t, nil
}
