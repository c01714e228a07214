package crm

import (
	"fmt"
	"strings"
	"unicode"
)

// DuplicateMatch is one proposed duplicate pair with the reason it
// matched. The same pair appears once per matching criterion.
type DuplicateMatch struct {
	ContactID1   string `json:"contact_id_1"`
	ContactID2   string `json:"contact_id_2"`
	ContactName1 string `json:"contact_name_1"`
	ContactName2 string `json:"contact_name_2"`
	Reason       string `json:"reason"`
}

// FindDuplicates scans all active contacts owned by userID pairwise and
// proposes candidate duplicates by normalized name, email, or phone.
// It is advisory and read-only: merge execution is a separate operation.
//
// The returned slice is capped at the configured duplicate limit; total
// is the full match count before truncation.
func (s *Store) FindDuplicates(userID string) ([]DuplicateMatch, int, error) {
	contacts, _, err := s.ListContacts(userID, 1<<30, 0)
	if err != nil {
		return nil, 0, err
	}

	emails, phones, err := s.loadMethodIndex(userID)
	if err != nil {
		return nil, 0, err
	}

	var matches []DuplicateMatch
	for i := 0; i < len(contacts); i++ {
		for j := i + 1; j < len(contacts); j++ {
			a, b := &contacts[i], &contacts[j]

			if sameNormalizedName(a, b) {
				matches = append(matches, newMatch(a, b, "same name"))
			}
			for _, v := range intersectOrdered(emails[a.ID], emails[b.ID]) {
				matches = append(matches, newMatch(a, b, "same email: "+v))
			}
			for _, v := range intersectOrdered(phones[a.ID], phones[b.ID]) {
				matches = append(matches, newMatch(a, b, "same phone: "+v))
			}
		}
	}

	total := len(matches)
	if total > s.cfg.DuplicateLimit {
		matches = matches[:s.cfg.DuplicateLimit]
	}
	return matches, total, nil
}

// loadMethodIndex builds per-contact lists of normalized email and phone
// values for the user's active contacts, in method creation order.
func (s *Store) loadMethodIndex(userID string) (emails, phones map[string][]string, err error) {
	rows, err := s.db.Query(
		`SELECT m.contact_id, m.type, m.value
		 FROM contact_methods m
		 JOIN contacts c ON c.id = m.contact_id
		 WHERE c.user_id = ? AND c.deleted_at IS NULL AND m.deleted_at IS NULL
		   AND m.type IN (?, ?)
		 ORDER BY m.created_at, m.id`,
		userID, MethodEmail, MethodPhone)
	if err != nil {
		return nil, nil, fmt.Errorf("crm: load contact methods: %w", err)
	}
	defer rows.Close()

	emails = make(map[string][]string)
	phones = make(map[string][]string)
	for rows.Next() {
		var contactID, typ, value string
		if err := rows.Scan(&contactID, &typ, &value); err != nil {
			return nil, nil, err
		}
		switch typ {
		case MethodEmail:
			if v := normalizeEmail(value); v != "" {
				emails[contactID] = appendUnique(emails[contactID], v)
			}
		case MethodPhone:
			if v := normalizePhone(value); v != "" {
				phones[contactID] = appendUnique(phones[contactID], v)
			}
		}
	}
	return emails, phones, rows.Err()
}

func newMatch(a, b *Contact, reason string) DuplicateMatch {
	return DuplicateMatch{
		ContactID1:   a.ID,
		ContactID2:   b.ID,
		ContactName1: a.DisplayName(),
		ContactName2: b.DisplayName(),
		Reason:       reason,
	}
}

// sameNormalizedName reports whether both contacts carry the same
// non-empty (first, last) name after lowercasing and trimming. A
// non-empty last name is required on both sides so that common first
// names without a surname do not match.
func sameNormalizedName(a, b *Contact) bool {
	aFirst := normalizeName(a.FirstName)
	bFirst := normalizeName(b.FirstName)
	aLast := normalizeName(derefString(a.LastName))
	bLast := normalizeName(derefString(b.LastName))
	if aFirst == "" || aLast == "" || bLast == "" {
		return false
	}
	return aFirst == bFirst && aLast == bLast
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizePhone strips every non-digit, so "+1-555-0123" and "15550123"
// compare equal.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// intersectOrdered returns the values present in both lists, in the
// first list's order.
func intersectOrdered(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []string
	for _, v := range a {
		if inB[v] {
			out = append(out, v)
		}
	}
	return out
}
