package crm

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Sentinel errors for contact lookup and merge preconditions. Ownership
// mismatches report as not-found so one tenant cannot probe another's ids.
var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrSelfMerge         = errors.New("cannot merge a contact with itself")
	ErrPrimaryNotFound   = errors.New("primary contact not found")
	ErrSecondaryNotFound = errors.New("secondary contact not found")
)

// Contact statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeceased = "deceased"
)

// Contact is the root entity. A birthday is stored in one of three
// representations: an exact date, a month+day, or an approximate year.
type Contact struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	FirstName     string  `json:"first_name"`
	LastName      *string `json:"last_name,omitempty"`
	Nickname      *string `json:"nickname,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Status        string  `json:"status"`
	BirthdayDate  *string `json:"birthday_date,omitempty"`
	BirthdayMonth *int    `json:"birthday_month,omitempty"`
	BirthdayDay   *int    `json:"birthday_day,omitempty"`
	BirthdayYear  *int    `json:"birthday_year,omitempty"`
	Company       *string `json:"company,omitempty"`
	JobTitle      *string `json:"job_title,omitempty"`
	HowWeMet      *string `json:"how_we_met,omitempty"`
	IsMe          bool    `json:"is_me"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	DeletedAt     *string `json:"deleted_at,omitempty"`
}

// CreateContactParams holds the input for creating a contact.
type CreateContactParams struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=active archived deceased"`
	BirthdayDate  string `json:"birthday_date,omitempty"`
	BirthdayMonth int    `json:"birthday_month,omitempty" validate:"omitempty,min=1,max=12"`
	BirthdayDay   int    `json:"birthday_day,omitempty" validate:"omitempty,min=1,max=31"`
	BirthdayYear  int    `json:"birthday_year,omitempty"`
	Company       string `json:"company,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	HowWeMet      string `json:"how_we_met,omitempty"`
}

// UpdateContactParams holds partial update fields for a contact.
// Nil pointers leave the current value untouched.
type UpdateContactParams struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Nickname      *string `json:"nickname,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=active archived deceased"`
	BirthdayDate  *string `json:"birthday_date,omitempty"`
	BirthdayMonth *int    `json:"birthday_month,omitempty"`
	BirthdayDay   *int    `json:"birthday_day,omitempty"`
	BirthdayYear  *int    `json:"birthday_year,omitempty"`
	Company       *string `json:"company,omitempty"`
	JobTitle      *string `json:"job_title,omitempty"`
	HowWeMet      *string `json:"how_we_met,omitempty"`
}

const contactColumns = `id, user_id, first_name, last_name, nickname, gender, status,
	birthday_date, birthday_month, birthday_day, birthday_year,
	company, job_title, how_we_met, is_me, created_at, updated_at, deleted_at`

func scanContact(row interface{ Scan(dest ...any) error }) (*Contact, error) {
	var c Contact
	var isMe int
	if err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Nickname, &c.Gender, &c.Status,
		&c.BirthdayDate, &c.BirthdayMonth, &c.BirthdayDay, &c.BirthdayYear,
		&c.Company, &c.JobTitle, &c.HowWeMet, &isMe,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}
	c.IsMe = isMe != 0
	return &c, nil
}

// CreateContact inserts a new contact owned by userID.
func (s *Store) CreateContact(userID string, p CreateContactParams) (*Contact, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("crm: invalid contact: %w", err)
	}
	status := p.Status
	if status == "" {
		status = StatusActive
	}

	id := newID()
	if _, err := s.execHook(s.db,
		`INSERT INTO contacts (id, user_id, first_name, last_name, nickname, gender, status,
			birthday_date, birthday_month, birthday_day, birthday_year,
			company, job_title, how_we_met)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, p.FirstName,
		nullableString(p.LastName), nullableString(p.Nickname), nullableString(p.Gender), status,
		nullableString(p.BirthdayDate), nullableInt(p.BirthdayMonth), nullableInt(p.BirthdayDay), nullableInt(p.BirthdayYear),
		nullableString(p.Company), nullableString(p.JobTitle), nullableString(p.HowWeMet),
	); err != nil {
		return nil, fmt.Errorf("crm: create contact: %w", err)
	}

	s.log.Debug("contact created", zap.String("user_id", userID), zap.String("contact_id", id))
	return s.GetContact(userID, id)
}

// GetContact retrieves an active (non-deleted) contact by id and owner.
// Missing, foreign-owned, and soft-deleted rows all return ErrContactNotFound.
func (s *Store) GetContact(userID, id string) (*Contact, error) {
	row := s.db.QueryRow(
		`SELECT `+contactColumns+` FROM contacts
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("crm: get contact: %w", err)
	}
	return c, nil
}

// UpdateContact partially updates a contact.
func (s *Store) UpdateContact(userID, id string, p UpdateContactParams) (*Contact, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("crm: invalid update: %w", err)
	}
	c, err := s.GetContact(userID, id)
	if err != nil {
		return nil, err
	}

	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = nullableString(*p.LastName)
	}
	if p.Nickname != nil {
		c.Nickname = nullableString(*p.Nickname)
	}
	if p.Gender != nil {
		c.Gender = nullableString(*p.Gender)
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.BirthdayDate != nil {
		c.BirthdayDate = nullableString(*p.BirthdayDate)
	}
	if p.BirthdayMonth != nil {
		c.BirthdayMonth = p.BirthdayMonth
	}
	if p.BirthdayDay != nil {
		c.BirthdayDay = p.BirthdayDay
	}
	if p.BirthdayYear != nil {
		c.BirthdayYear = p.BirthdayYear
	}
	if p.Company != nil {
		c.Company = nullableString(*p.Company)
	}
	if p.JobTitle != nil {
		c.JobTitle = nullableString(*p.JobTitle)
	}
	if p.HowWeMet != nil {
		c.HowWeMet = nullableString(*p.HowWeMet)
	}

	if _, err := s.execHook(s.db,
		`UPDATE contacts
		 SET first_name = ?, last_name = ?, nickname = ?, gender = ?, status = ?,
		     birthday_date = ?, birthday_month = ?, birthday_day = ?, birthday_year = ?,
		     company = ?, job_title = ?, how_we_met = ?,
		     updated_at = datetime('now')
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		c.FirstName, c.LastName, c.Nickname, c.Gender, c.Status,
		c.BirthdayDate, c.BirthdayMonth, c.BirthdayDay, c.BirthdayYear,
		c.Company, c.JobTitle, c.HowWeMet,
		id, userID,
	); err != nil {
		return nil, fmt.Errorf("crm: update contact: %w", err)
	}

	return s.GetContact(userID, id)
}

// ListContacts returns a page of active contacts plus the total count.
func (s *Store) ListContacts(userID string, limit, offset int) ([]Contact, int, error) {
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM contacts WHERE user_id = ? AND deleted_at IS NULL`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("crm: count contacts: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+contactColumns+` FROM contacts
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY created_at, id LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("crm: list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("crm: scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, total, rows.Err()
}

// DeleteContact soft-deletes a contact. Dependent rows are kept and
// become restorable along with it.
func (s *Store) DeleteContact(userID, id string) error {
	res, err := s.execHook(s.db,
		`UPDATE contacts
		 SET deleted_at = datetime('now'), updated_at = datetime('now')
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID)
	if err != nil {
		return fmt.Errorf("crm: delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContactNotFound
	}
	s.log.Debug("contact soft-deleted", zap.String("contact_id", id))
	return nil
}

// RestoreContact clears the soft-delete marker on a contact.
func (s *Store) RestoreContact(userID, id string) (*Contact, error) {
	res, err := s.execHook(s.db,
		`UPDATE contacts
		 SET deleted_at = NULL, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ? AND deleted_at IS NOT NULL`,
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("crm: restore contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrContactNotFound
	}
	return s.GetContact(userID, id)
}

// DisplayName renders a contact's name for match reporting and tool output.
func (c *Contact) DisplayName() string {
	name := c.FirstName
	if c.LastName != nil && *c.LastName != "" {
		name += " " + *c.LastName
	}
	return name
}

func nullableInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
