// Package store handles SQLite persistence of the name dataset served by
// the local stand-in API.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/verte-zerg/nomes/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for ranking data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking (
			position INTEGER PRIMARY KEY,
			nome TEXT NOT NULL,
			frequencia INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS name_periods (
			nome TEXT NOT NULL,
			seq INTEGER NOT NULL,
			periodo TEXT NOT NULL,
			frequencia INTEGER NOT NULL,
			PRIMARY KEY (nome, seq)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}

// ReplaceRanking stores records as the overall ranking, in order.
func (s *Store) ReplaceRanking(ctx context.Context, records []model.NameRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin ranking import")
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM ranking`); err != nil {
		return errors.Wrap(err, "clear ranking")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ranking (position, nome, frequencia) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare ranking insert")
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, i+1, r.Nome, r.Frequencia); err != nil {
			return errors.Wrapf(err, "insert ranking entry %q", r.Nome)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit ranking import")
	}
	return nil
}

// ReplaceHistory stores the per-period records of a name, in order. Names
// are keyed in lower case.
func (s *Store) ReplaceHistory(ctx context.Context, name string, records []model.NameRecord) (err error) {
	key := normalizeName(name)
	if key == "" {
		return errors.New("name is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin history import")
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM name_periods WHERE nome = ?`, key); err != nil {
		return errors.Wrapf(err, "clear history of %q", key)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO name_periods (nome, seq, periodo, frequencia) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare history insert")
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, key, i, r.Periodo, r.Frequencia); err != nil {
			return errors.Wrapf(err, "insert period %q of %q", r.Periodo, key)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit history import")
	}
	return nil
}

// Ranking returns the stored ranking ordered by position.
func (s *Store) Ranking(ctx context.Context) ([]model.NameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, nome, frequencia FROM ranking ORDER BY position ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "query ranking")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.NameRecord
	for rows.Next() {
		var r model.NameRecord
		if err := rows.Scan(&r.Ranking, &r.Nome, &r.Frequencia); err != nil {
			return nil, errors.Wrap(err, "scan ranking")
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate ranking")
	}
	return result, nil
}

// NameHistory returns the stored periods of name in import order. Unknown
// names yield no records and no error.
func (s *Store) NameHistory(ctx context.Context, name string) ([]model.NameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT periodo, frequencia FROM name_periods WHERE nome = ? ORDER BY seq ASC`,
		normalizeName(name))
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.NameRecord
	for rows.Next() {
		var r model.NameRecord
		if err := rows.Scan(&r.Periodo, &r.Frequencia); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history")
	}
	return result, nil
}

// CountNames returns how many names have a stored history.
func (s *Store) CountNames(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT nome) FROM name_periods`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count names")
	}
	return n, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
