// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the people
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// email is nullable: NULL means no address on file, which is not the
	// same thing as an empty string.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS people (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			age   INTEGER NOT NULL,
			email TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// nullableEmail converts between *string and sql.NullString.
func nullableEmail(email *string) sql.NullString {
	if email == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *email, Valid: true}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (types.Person, error) {
	var (
		person types.Person
		email  sql.NullString
	)

	// Scan order must match the SELECT column order.
	if err := row.Scan(&person.ID, &person.Name, &person.Age, &email); err != nil {
		return types.Person{}, err
	}

	if email.Valid {
		person.Email = &email.String
	}

	return person, nil
}

// CreatePerson inserts a new row into the people table.
// Placeholders (?) keep the values out of the SQL text.
func (s *SQLite) CreatePerson(name string, age int, email *string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO people (name, age, email) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(name, age, nullableEmail(email))
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: last insert id: %w", err)
	}

	return lastID, nil
}

// GetPersonByID fetches exactly one row matched by primary key.
func (s *SQLite) GetPersonByID(id int64) (types.Person, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, age, email FROM people WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPersonByID: prepare: %w", err)
	}
	defer stmt.Close()

	// QueryRow never returns nil; a missing row surfaces from Scan.
	person, err := scanPerson(stmt.QueryRow(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Person{}, fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Person{}, fmt.Errorf("GetPersonByID: scan: %w", err)
	}

	return person, nil
}

// GetPeople returns all rows as a slice, ordered by id.
func (s *SQLite) GetPeople() ([]types.Person, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, age, email FROM people ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetPeople: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetPeople: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON encoding is [] rather than null.
	people := make([]types.Person, 0)

	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("GetPeople: scan row: %w", err)
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPeople: rows iteration: %w", err)
	}

	return people, nil
}

// UpdatePersonByID replaces a person's data with the provided values and
// returns what is now stored.
func (s *SQLite) UpdatePersonByID(id int64, person types.Person) (types.Person, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE people SET name = ?, age = ?, email = ? WHERE id = ?",
	)
	if err != nil {
		return types.Person{}, fmt.Errorf("UpdatePersonByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(person.Name, person.Age, nullableEmail(person.Email), id)
	if err != nil {
		return types.Person{}, fmt.Errorf("UpdatePersonByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Person{}, fmt.Errorf("UpdatePersonByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Person{}, fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
	}

	return s.GetPersonByID(id)
}

// DeletePersonByID removes a row by primary key.
func (s *SQLite) DeletePersonByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM people WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeletePersonByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeletePersonByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeletePersonByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

var _ storage.Storage = (*SQLite)(nil)
