package crm

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Summary keys reported by MergeContacts. Every key is always present in
// the summary map; zero is a valid count.
var mergeSummaryKeys = []string{
	"notes", "contact_methods", "addresses", "reminders", "gifts", "debts", "tasks",
	"life_events", "activity_participants", "contact_tags", "relationships",
	"food_preferences", "custom_fields", "fields_copied",
}

// MergeContacts consolidates the secondary contact into the primary:
// every dependent row is reassigned or reconciled, the primary's empty
// scalar fields are filled from the secondary, and the secondary is
// soft-deleted. The whole mutation runs in one transaction; any failure
// leaves the contact graph unchanged.
//
// Merge is deliberately not idempotent: a second call with the same pair
// fails with ErrSecondaryNotFound because the secondary is soft-deleted.
func (s *Store) MergeContacts(userID, primaryID, secondaryID string) (*Contact, map[string]int, error) {
	if primaryID == secondaryID {
		return nil, nil, ErrSelfMerge
	}
	primary, err := s.GetContact(userID, primaryID)
	if errors.Is(err, ErrContactNotFound) {
		return nil, nil, ErrPrimaryNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("crm: load primary contact: %w", err)
	}
	secondary, err := s.GetContact(userID, secondaryID)
	if errors.Is(err, ErrContactNotFound) {
		return nil, nil, ErrSecondaryNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("crm: load secondary contact: %w", err)
	}

	summary := make(map[string]int, len(mergeSummaryKeys))
	for _, k := range mergeSummaryKeys {
		summary[k] = 0
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return nil, nil, fmt.Errorf("crm: begin merge transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Simple reassignments: the whole row moves to the primary.
	for _, table := range []string{"notes", "contact_methods", "addresses", "reminders", "gifts", "debts", "tasks"} {
		res, err := s.execHook(tx,
			`UPDATE `+table+` SET contact_id = ? WHERE contact_id = ?`,
			primaryID, secondaryID)
		if err != nil {
			return nil, nil, fmt.Errorf("crm: merge %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		summary[table] = int(n)
	}

	if err := s.mergeLifeEvents(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.mergeActivityParticipants(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.mergeContactTags(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.mergeRelationships(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.mergeFoodPreferences(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.mergeCustomFields(tx, primaryID, secondaryID, summary); err != nil {
		return nil, nil, err
	}
	if err := s.coalesceScalars(tx, primary, secondary, summary); err != nil {
		return nil, nil, err
	}

	// Soft-delete the secondary as the final in-transaction step.
	if _, err := s.execHook(tx,
		`UPDATE contacts SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ?`,
		secondaryID,
	); err != nil {
		return nil, nil, fmt.Errorf("crm: soft-delete secondary: %w", err)
	}

	if err := s.commitHook(tx); err != nil {
		return nil, nil, fmt.Errorf("crm: commit merge: %w", err)
	}

	merged, err := s.GetContact(userID, primaryID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("contacts merged",
		zap.String("user_id", userID),
		zap.String("primary_id", primaryID),
		zap.String("secondary_id", secondaryID),
		zap.Int("fields_copied", summary["fields_copied"]),
	)
	return merged, summary, nil
}

// mergeLifeEvents reassigns the secondary's life events and re-points its
// related-party join rows, skipping joins the primary already holds.
func (s *Store) mergeLifeEvents(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	if _, err := s.execHook(tx,
		`DELETE FROM life_event_contacts
		 WHERE contact_id = ?
		   AND life_event_id IN (SELECT life_event_id FROM life_event_contacts WHERE contact_id = ?)`,
		secondaryID, primaryID,
	); err != nil {
		return fmt.Errorf("crm: dedup life event joins: %w", err)
	}
	if _, err := s.execHook(tx,
		`UPDATE life_event_contacts SET contact_id = ? WHERE contact_id = ?`,
		primaryID, secondaryID,
	); err != nil {
		return fmt.Errorf("crm: reassign life event joins: %w", err)
	}
	res, err := s.execHook(tx,
		`UPDATE life_events SET contact_id = ? WHERE contact_id = ?`,
		primaryID, secondaryID)
	if err != nil {
		return fmt.Errorf("crm: reassign life events: %w", err)
	}
	n, _ := res.RowsAffected()
	summary["life_events"] = int(n)
	return nil
}

// mergeActivityParticipants reassigns participant rows, deleting the
// secondary's row where the activity already lists the primary.
func (s *Store) mergeActivityParticipants(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	if _, err := s.execHook(tx,
		`DELETE FROM activity_participants
		 WHERE contact_id = ?
		   AND activity_id IN (SELECT activity_id FROM activity_participants WHERE contact_id = ?)`,
		secondaryID, primaryID,
	); err != nil {
		return fmt.Errorf("crm: dedup activity participants: %w", err)
	}
	res, err := s.execHook(tx,
		`UPDATE activity_participants SET contact_id = ? WHERE contact_id = ?`,
		primaryID, secondaryID)
	if err != nil {
		return fmt.Errorf("crm: reassign activity participants: %w", err)
	}
	n, _ := res.RowsAffected()
	summary["activity_participants"] = int(n)
	return nil
}

// mergeContactTags moves the secondary's tags with insert-or-ignore
// semantics. Only tags not already on the primary count as moved.
func (s *Store) mergeContactTags(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	var moved int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM contact_tags
		 WHERE contact_id = ?
		   AND tag_id NOT IN (SELECT tag_id FROM contact_tags WHERE contact_id = ?)`,
		secondaryID, primaryID,
	).Scan(&moved); err != nil {
		return fmt.Errorf("crm: count new tags: %w", err)
	}
	if _, err := s.execHook(tx,
		`INSERT OR IGNORE INTO contact_tags (contact_id, tag_id)
		 SELECT ?, tag_id FROM contact_tags WHERE contact_id = ?`,
		primaryID, secondaryID,
	); err != nil {
		return fmt.Errorf("crm: move tags: %w", err)
	}
	if _, err := s.execHook(tx,
		`DELETE FROM contact_tags WHERE contact_id = ?`, secondaryID,
	); err != nil {
		return fmt.Errorf("crm: clear secondary tags: %w", err)
	}
	summary["contact_tags"] = moved
	return nil
}

// mergeRelationships walks every relationship row owned by the secondary:
//   - the pair between secondary and primary is deleted in both
//     directions (it would become a self-relationship),
//   - pairs to a third party C the primary already relates to are deleted
//     in both directions (dedup by C, type ignored),
//   - remaining pairs are re-pointed at the primary on both directions,
//     preserving the bidirectional invariant.
//
// Only re-pointed rows are counted.
func (s *Store) mergeRelationships(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	type relRow struct {
		id      string
		related string
	}
	rows, err := tx.Query(
		`SELECT id, related_contact_id FROM relationships WHERE contact_id = ?
		 ORDER BY created_at, id`, secondaryID)
	if err != nil {
		return fmt.Errorf("crm: load secondary relationships: %w", err)
	}
	var rels []relRow
	for rows.Next() {
		var r relRow
		if err := rows.Scan(&r.id, &r.related); err != nil {
			rows.Close()
			return fmt.Errorf("crm: scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	moved := 0
	for _, r := range rels {
		if r.related == primaryID {
			// The relationship between the two merged contacts collapses.
			if _, err := s.execHook(tx,
				`DELETE FROM relationships
				 WHERE (contact_id = ? AND related_contact_id = ?)
				    OR (contact_id = ? AND related_contact_id = ?)`,
				secondaryID, primaryID, primaryID, secondaryID,
			); err != nil {
				return fmt.Errorf("crm: collapse self relationship: %w", err)
			}
			continue
		}

		var existing int
		if err := tx.QueryRow(
			`SELECT COUNT(*) FROM relationships WHERE contact_id = ? AND related_contact_id = ?`,
			primaryID, r.related,
		).Scan(&existing); err != nil {
			return fmt.Errorf("crm: check primary relationship: %w", err)
		}
		if existing > 0 {
			// Primary already relates to this third party; keep its row.
			if _, err := s.execHook(tx,
				`DELETE FROM relationships
				 WHERE (contact_id = ? AND related_contact_id = ?)
				    OR (contact_id = ? AND related_contact_id = ?)`,
				secondaryID, r.related, r.related, secondaryID,
			); err != nil {
				return fmt.Errorf("crm: dedup relationship: %w", err)
			}
			continue
		}

		if _, err := s.execHook(tx,
			`UPDATE relationships SET contact_id = ? WHERE id = ?`,
			primaryID, r.id,
		); err != nil {
			return fmt.Errorf("crm: reassign relationship: %w", err)
		}
		if _, err := s.execHook(tx,
			`UPDATE relationships SET related_contact_id = ?
			 WHERE contact_id = ? AND related_contact_id = ?`,
			primaryID, r.related, secondaryID,
		); err != nil {
			return fmt.Errorf("crm: repoint inverse relationship: %w", err)
		}
		moved++
	}
	summary["relationships"] = moved
	return nil
}

// mergeFoodPreferences reassigns the secondary's row when the primary has
// none, and otherwise unions each list field onto the primary's row.
func (s *Store) mergeFoodPreferences(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	sec, err := s.foodPreferenceByContact(tx, secondaryID)
	if err != nil {
		return fmt.Errorf("crm: load secondary food preference: %w", err)
	}
	if sec == nil {
		return nil
	}
	prim, err := s.foodPreferenceByContact(tx, primaryID)
	if err != nil {
		return fmt.Errorf("crm: load primary food preference: %w", err)
	}

	if prim == nil {
		if _, err := s.execHook(tx,
			`UPDATE food_preferences SET contact_id = ?, updated_at = datetime('now') WHERE contact_id = ?`,
			primaryID, secondaryID,
		); err != nil {
			return fmt.Errorf("crm: reassign food preference: %w", err)
		}
		summary["food_preferences"] = 1
		return nil
	}

	notes := prim.Notes
	if notes == nil {
		notes = sec.Notes
	}
	if _, err := s.execHook(tx,
		`UPDATE food_preferences
		 SET allergies = ?, dietary_restrictions = ?, favorite_foods = ?, disliked_foods = ?,
		     notes = ?, updated_at = datetime('now')
		 WHERE contact_id = ?`,
		encodeList(unionLists(prim.Allergies, sec.Allergies)),
		encodeList(unionLists(prim.DietaryRestrictions, sec.DietaryRestrictions)),
		encodeList(unionLists(prim.FavoriteFoods, sec.FavoriteFoods)),
		encodeList(unionLists(prim.DislikedFoods, sec.DislikedFoods)),
		notes, primaryID,
	); err != nil {
		return fmt.Errorf("crm: union food preferences: %w", err)
	}
	if _, err := s.execHook(tx,
		`DELETE FROM food_preferences WHERE contact_id = ?`, secondaryID,
	); err != nil {
		return fmt.Errorf("crm: delete secondary food preference: %w", err)
	}
	summary["food_preferences"] = 1
	return nil
}

// mergeCustomFields re-points secondary fields whose names are not taken
// on the primary. Colliding names stay on the soft-deleted secondary so
// the primary's value is never overwritten. The scan is row-by-row: the
// secondary may itself carry duplicate field names, and only the first
// occurrence may move.
func (s *Store) mergeCustomFields(tx *sql.Tx, primaryID, secondaryID string, summary map[string]int) error {
	taken := make(map[string]bool)
	rows, err := tx.Query(
		`SELECT field_name FROM custom_fields WHERE contact_id = ?`, primaryID)
	if err != nil {
		return fmt.Errorf("crm: load primary custom fields: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		taken[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	type fieldRow struct {
		id   string
		name string
	}
	rows, err = tx.Query(
		`SELECT id, field_name FROM custom_fields WHERE contact_id = ?
		 ORDER BY created_at, id`, secondaryID)
	if err != nil {
		return fmt.Errorf("crm: load secondary custom fields: %w", err)
	}
	var fields []fieldRow
	for rows.Next() {
		var f fieldRow
		if err := rows.Scan(&f.id, &f.name); err != nil {
			rows.Close()
			return err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	copied := 0
	for _, f := range fields {
		if taken[f.name] {
			continue
		}
		if _, err := s.execHook(tx,
			`UPDATE custom_fields SET contact_id = ?, updated_at = datetime('now') WHERE id = ?`,
			primaryID, f.id,
		); err != nil {
			return fmt.Errorf("crm: move custom field: %w", err)
		}
		taken[f.name] = true
		copied++
	}
	summary["custom_fields"] = copied
	return nil
}

// coalesceScalars copies each of the secondary's scalar values onto the
// primary where the primary's column is null or empty. Non-empty primary
// values are never overwritten.
func (s *Store) coalesceScalars(tx *sql.Tx, primary, secondary *Contact, summary map[string]int) error {
	copied := 0

	coalesceStr := func(dst **string, src *string) {
		if derefString(*dst) == "" && derefString(src) != "" {
			*dst = src
			copied++
		}
	}
	coalesceInt := func(dst **int, src *int) {
		if *dst == nil && src != nil {
			*dst = src
			copied++
		}
	}

	coalesceStr(&primary.LastName, secondary.LastName)
	coalesceStr(&primary.Nickname, secondary.Nickname)
	coalesceStr(&primary.Gender, secondary.Gender)
	coalesceStr(&primary.BirthdayDate, secondary.BirthdayDate)
	coalesceInt(&primary.BirthdayMonth, secondary.BirthdayMonth)
	coalesceInt(&primary.BirthdayDay, secondary.BirthdayDay)
	coalesceInt(&primary.BirthdayYear, secondary.BirthdayYear)
	coalesceStr(&primary.Company, secondary.Company)
	coalesceStr(&primary.JobTitle, secondary.JobTitle)
	coalesceStr(&primary.HowWeMet, secondary.HowWeMet)

	summary["fields_copied"] = copied
	if copied == 0 {
		return nil
	}

	if _, err := s.execHook(tx,
		`UPDATE contacts
		 SET last_name = ?, nickname = ?, gender = ?,
		     birthday_date = ?, birthday_month = ?, birthday_day = ?, birthday_year = ?,
		     company = ?, job_title = ?, how_we_met = ?,
		     updated_at = datetime('now')
		 WHERE id = ?`,
		primary.LastName, primary.Nickname, primary.Gender,
		primary.BirthdayDate, primary.BirthdayMonth, primary.BirthdayDay, primary.BirthdayYear,
		primary.Company, primary.JobTitle, primary.HowWeMet,
		primary.ID,
	); err != nil {
		return fmt.Errorf("crm: coalesce contact fields: %w", err)
	}
	return nil
}
