// Package crm implements the relational entity store for the personal CRM.
//
// It uses SQLite to persist contacts and every dependent entity type
// (notes, contact methods, addresses, reminders, gifts, debts, tasks,
// life events, activities, tags, relationships), all scoped per user and
// soft-deleted rather than destroyed. The two engines that operate across
// the whole entity graph — contact merge and duplicate detection — live
// in this package as well, since they need direct access to the shared
// transaction context.
package crm

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// validate checks struct tags on create/update params.
var validate = validator.New()

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir        string
	DuplicateLimit int // max duplicate match rows returned by FindDuplicates
	PageSize       int // default list page size
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:        filepath.Join(home, ".crm"),
		DuplicateLimit: 20,
		PageSize:       25,
	}
}

func (c Config) withDefaults() Config {
	if c.DuplicateLimit <= 0 {
		c.DuplicateLimit = 20
	}
	if c.PageSize <= 0 {
		c.PageSize = 25
	}
	return c
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the CRM entity store backed by SQLite.
type Store struct {
	db    *sql.DB
	cfg   Config
	log   *zap.Logger
	hooks storeHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type storeHooks struct {
	exec    func(db execer, query string, args ...any) (sql.Result, error)
	beginTx func(db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func (s *Store) execHook(db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(db, query, args...)
	}
	return db.Exec(query, args...)
}

func (s *Store) beginTxHook() (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(s.db)
	}
	return s.db.Begin()
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
// A nil logger is replaced with a no-op logger.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("crm: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "crm.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("crm: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("crm: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, log: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("crm: migration: %w", err)
	}

	logger.Debug("store opened", zap.String("path", dbPath))
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS contacts (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			first_name     TEXT NOT NULL,
			last_name      TEXT,
			nickname       TEXT,
			gender         TEXT,
			status         TEXT NOT NULL DEFAULT 'active',
			birthday_date  TEXT,
			birthday_month INTEGER,
			birthday_day   INTEGER,
			birthday_year  INTEGER,
			company        TEXT,
			job_title      TEXT,
			how_we_met     TEXT,
			is_me          INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at     TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at     TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_contacts_user    ON contacts(user_id);
		CREATE INDEX IF NOT EXISTS idx_contacts_deleted ON contacts(deleted_at);
		CREATE INDEX IF NOT EXISTS idx_contacts_name    ON contacts(user_id, first_name, last_name);

		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL,
			title      TEXT,
			body       TEXT NOT NULL,
			pinned     INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_notes_contact ON notes(contact_id);

		CREATE TABLE IF NOT EXISTS contact_methods (
			id         TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL,
			type       TEXT NOT NULL,
			value      TEXT NOT NULL,
			label      TEXT,
			is_primary INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_methods_contact ON contact_methods(contact_id);
		CREATE INDEX IF NOT EXISTS idx_methods_type    ON contact_methods(type);

		CREATE TABLE IF NOT EXISTS addresses (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL,
			label       TEXT,
			street      TEXT,
			city        TEXT,
			province    TEXT,
			postal_code TEXT,
			country     TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at  TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_addresses_contact ON addresses(contact_id);

		CREATE TABLE IF NOT EXISTS food_preferences (
			id                   TEXT PRIMARY KEY,
			contact_id           TEXT NOT NULL UNIQUE,
			allergies            TEXT NOT NULL DEFAULT '[]',
			dietary_restrictions TEXT NOT NULL DEFAULT '[]',
			favorite_foods       TEXT NOT NULL DEFAULT '[]',
			disliked_foods       TEXT NOT NULL DEFAULT '[]',
			notes                TEXT,
			created_at           TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at           TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);

		CREATE TABLE IF NOT EXISTS custom_fields (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL,
			field_name  TEXT NOT NULL,
			field_value TEXT NOT NULL,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_custom_fields_contact ON custom_fields(contact_id);

		CREATE TABLE IF NOT EXISTS reminders (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT,
			due_at      TEXT NOT NULL,
			recurring   TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at  TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_reminders_contact ON reminders(contact_id);

		CREATE TABLE IF NOT EXISTS gifts (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT,
			status      TEXT NOT NULL DEFAULT 'idea',
			occasion    TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at  TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_gifts_contact ON gifts(contact_id);

		CREATE TABLE IF NOT EXISTS debts (
			id           TEXT PRIMARY KEY,
			contact_id   TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			currency     TEXT NOT NULL DEFAULT 'USD',
			direction    TEXT NOT NULL,
			description  TEXT,
			settled      INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at   TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at   TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_debts_contact ON debts(contact_id);

		CREATE TABLE IF NOT EXISTS tasks (
			id           TEXT PRIMARY KEY,
			contact_id   TEXT NOT NULL,
			title        TEXT NOT NULL,
			description  TEXT,
			completed    INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			created_at   TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at   TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at   TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_contact ON tasks(contact_id);

		CREATE TABLE IF NOT EXISTS life_events (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL,
			type        TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT,
			happened_at TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at  TEXT,
			FOREIGN KEY (contact_id) REFERENCES contacts(id)
		);
		CREATE INDEX IF NOT EXISTS idx_life_events_contact ON life_events(contact_id);

		CREATE TABLE IF NOT EXISTS life_event_contacts (
			life_event_id TEXT NOT NULL,
			contact_id    TEXT NOT NULL,
			FOREIGN KEY (life_event_id) REFERENCES life_events(id),
			FOREIGN KEY (contact_id)    REFERENCES contacts(id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_life_event_contacts_unique
			ON life_event_contacts(life_event_id, contact_id);

		CREATE TABLE IF NOT EXISTS activities (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT,
			happened_at TEXT,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			deleted_at  TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS activity_participants (
			activity_id TEXT NOT NULL,
			contact_id  TEXT NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id),
			FOREIGN KEY (contact_id)  REFERENCES contacts(id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_activity_participants_unique
			ON activity_participants(activity_id, contact_id);

		CREATE TABLE IF NOT EXISTS tags (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_user_name ON tags(user_id, name);

		CREATE TABLE IF NOT EXISTS contact_tags (
			contact_id TEXT NOT NULL,
			tag_id     TEXT NOT NULL,
			FOREIGN KEY (contact_id) REFERENCES contacts(id),
			FOREIGN KEY (tag_id)     REFERENCES tags(id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_contact_tags_unique ON contact_tags(contact_id, tag_id);

		CREATE TABLE IF NOT EXISTS relationships (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL,
			contact_id         TEXT NOT NULL,
			related_contact_id TEXT NOT NULL,
			type               TEXT NOT NULL,
			created_at         TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (user_id)            REFERENCES users(id),
			FOREIGN KEY (contact_id)         REFERENCES contacts(id),
			FOREIGN KEY (related_contact_id) REFERENCES contacts(id),
			CHECK (contact_id <> related_contact_id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_relationships_pair
			ON relationships(contact_id, related_contact_id);
		CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_contact_id);
	`
	if _, err := s.execHook(s.db, schema); err != nil {
		return err
	}
	return nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

// EnsureUser provisions a user row and its self-contact (is_me) on first
// use. Existing users are left untouched. Returns the user id.
func (s *Store) EnsureUser(userID, name string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("crm: user id is required")
	}
	if name == "" {
		name = userID
	}

	res, err := s.execHook(s.db,
		`INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return "", fmt.Errorf("crm: ensure user: %w", err)
	}

	// Bootstrap the self-contact only when the user row was just created,
	// so a restored database never gains a second is_me record.
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := s.execHook(s.db,
			`INSERT INTO contacts (id, user_id, first_name, is_me) VALUES (?, ?, ?, 1)`,
			newID(), userID, name,
		); err != nil {
			return "", fmt.Errorf("crm: bootstrap self contact: %w", err)
		}
		s.log.Info("user provisioned", zap.String("user_id", userID))
	}
	return userID, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func newID() string {
	return uuid.NewString()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
