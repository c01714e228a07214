package crm

import "database/sql"

// Execer aliases the internal exec interface for test hooks.
type Execer = execer

// DB exposes the internal *sql.DB for test helpers in crm_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetExecHook overrides statement execution, letting tests inject
// failures mid-transaction. Pass nil to restore the default.
func (s *Store) SetExecHook(fn func(db Execer, query string, args ...any) (sql.Result, error)) {
	s.hooks.exec = fn
}

// SetCommitHook overrides transaction commit. Pass nil to restore the
// default.
func (s *Store) SetCommitHook(fn func(tx *sql.Tx) error) {
	s.hooks.commit = fn
}
