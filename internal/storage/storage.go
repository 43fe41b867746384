// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so tests can pass an in-memory
// fake and a different database only needs a new implementation.
package storage

import (
	"errors"

	"github.com/aanand-mishra/people-api/internal/types"
)

// ErrNotFound is returned (wrapped) when no person has the requested ID.
// Check for it with errors.Is.
var ErrNotFound = errors.New("person not found")

// Storage is the database contract for person records.
type Storage interface {
	// CreatePerson inserts a new record and returns the auto-generated
	// primary-key ID. A nil email is stored as absent.
	CreatePerson(name string, age int, email *string) (int64, error)

	// GetPersonByID fetches a single person by primary key.
	GetPersonByID(id int64) (types.Person, error)

	// GetPeople returns every person ordered by ID.
	// Returns an empty slice (not nil) if there are none.
	GetPeople() ([]types.Person, error)

	// UpdatePersonByID replaces the fields of an existing person and
	// returns the stored result.
	UpdatePersonByID(id int64, person types.Person) (types.Person, error)

	// DeletePersonByID removes a person permanently.
	DeletePersonByID(id int64) error
}
