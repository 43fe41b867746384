package person

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory storage.Storage for handler tests.
type memStorage struct {
	people  []types.Person
	nextID  int64
	updates int
	err     error
}

func (m *memStorage) CreatePerson(name string, age int, email *string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	m.people = append(m.people, types.Person{ID: m.nextID, Name: name, Age: age, Email: email})
	return m.nextID, nil
}

func (m *memStorage) GetPersonByID(id int64) (types.Person, error) {
	if m.err != nil {
		return types.Person{}, m.err
	}
	for _, p := range m.people {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Person{}, fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
}

func (m *memStorage) GetPeople() ([]types.Person, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]types.Person{}, m.people...), nil
}

func (m *memStorage) UpdatePersonByID(id int64, person types.Person) (types.Person, error) {
	m.updates++
	for i, p := range m.people {
		if p.ID == id {
			person.ID = id
			m.people[i] = person
			return person, nil
		}
	}
	return types.Person{}, fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
}

func (m *memStorage) DeletePersonByID(id int64) error {
	for i, p := range m.people {
		if p.ID == id {
			m.people = append(m.people[:i], m.people[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no person found with id %d: %w", id, storage.ErrNotFound)
}

func seeded() *memStorage {
	m := &memStorage{}
	m.CreatePerson("Alice", 30, strPtr("alice@example.com"))
	m.CreatePerson("Bob", 17, nil)
	m.CreatePerson("Charlie", 25, nil)
	return m
}

func strPtr(s string) *string { return &s }

// brokenOutbox fails every write.
type brokenOutbox struct{}

func (brokenOutbox) Write(p []byte) (int, error) {
	return 0, errors.New("write outbox.log: file already closed")
}

// captureLogs routes the default slog logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &logs
}

func newRouter(s storage.Storage, outbox io.Writer) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("POST /api/people", New(s))
	router.HandleFunc("GET /api/people", GetList(s))
	router.HandleFunc("GET /api/people/adults", GetAdults(s))
	router.HandleFunc("GET /api/people/{id}", GetByID(s))
	router.HandleFunc("PUT /api/people/{id}", Update(s))
	router.HandleFunc("DELETE /api/people/{id}", Delete(s))
	router.HandleFunc("GET /api/people/{id}/greet/{other}", Greet(s))
	router.HandleFunc("GET /api/people/{id}/greeting", Introduce(s))
	router.HandleFunc("POST /api/people/{id}/email", SendEmail(s, outbox))
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		s := &memStorage{}
		router := newRouter(s, &bytes.Buffer{})

		w := do(router, http.MethodPost, "/api/people", `{"name":"Alice","age":30,"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":1}`, w.Body.String())
		require.Len(t, s.people, 1)
		assert.Equal(t, "alice@example.com", *s.people[0].Email)
	})

	t.Run("zero and negative ages are accepted", func(t *testing.T) {
		s := &memStorage{}
		router := newRouter(s, &bytes.Buffer{})

		assert.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/people", `{"name":"Baby","age":0}`).Code)
		assert.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/people", `{"name":"Odd","age":-2}`).Code)
		assert.Nil(t, s.people[0].Email)
	})

	t.Run("empty email kept distinct from absent", func(t *testing.T) {
		s := &memStorage{}
		router := newRouter(s, &bytes.Buffer{})

		do(router, http.MethodPost, "/api/people", `{"name":"Eve","age":40,"email":""}`)

		require.NotNil(t, s.people[0].Email)
		assert.Equal(t, "", *s.people[0].Email)
	})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty body", body: "", wantErr: "request body is empty"},
		{name: "malformed json", body: "{", wantErr: ""},
		{name: "missing fields", body: `{}`, wantErr: "field Name is required, field Age is required"},
		{name: "missing age", body: `{"name":"Bob"}`, wantErr: "field Age is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&memStorage{}, &bytes.Buffer{})

			w := do(router, http.MethodPost, "/api/people", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.wantErr != "" {
				assert.Contains(t, w.Body.String(), tt.wantErr)
			}
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		router := newRouter(&memStorage{err: errors.New("disk full")}, &bytes.Buffer{})

		w := do(router, http.MethodPost, "/api/people", `{"name":"Alice","age":30}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "disk full")
	})
}

func TestGetByID(t *testing.T) {
	router := newRouter(seeded(), &bytes.Buffer{})

	w := do(router, http.MethodGet, "/api/people/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","age":17,"email":null}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/people/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/people/abc", "").Code)
}

func TestListAndAdults(t *testing.T) {
	router := newRouter(seeded(), &bytes.Buffer{})

	w := do(router, http.MethodGet, "/api/people", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []types.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, types.Names(all))

	w = do(router, http.MethodGet, "/api/people/adults", "")
	require.Equal(t, http.StatusOK, w.Code)
	var adults []types.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adults))
	assert.Equal(t, []string{"Alice", "Charlie"}, types.Names(adults))

	empty := newRouter(&memStorage{}, &bytes.Buffer{})
	w = do(empty, http.MethodGet, "/api/people/adults", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUpdateAndDelete(t *testing.T) {
	s := seeded()
	router := newRouter(s, &bytes.Buffer{})

	w := do(router, http.MethodPut, "/api/people/2", `{"name":"Bob","age":18,"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","age":18,"email":"bob@example.com"}`, w.Body.String())

	assert.Equal(t, 1, s.updates)

	w = do(router, http.MethodPut, "/api/people/2", `{"name":"Bob","age":18,"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","age":18,"email":"bob@example.com"}`, w.Body.String())
	assert.Equal(t, 1, s.updates, "identical body should not be written again")

	w = do(router, http.MethodPut, "/api/people/2", `{"name":"Bob","age":18,"email":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","age":18,"email":""}`, w.Body.String())
	assert.Equal(t, 2, s.updates)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPut, "/api/people/9", `{"name":"X","age":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPut, "/api/people/2", `{"age":1}`).Code)

	w = do(router, http.MethodDelete, "/api/people/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, w.Body.String())
	assert.Len(t, s.people, 2)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/api/people/2", "").Code)
}

func TestGreet(t *testing.T) {
	router := newRouter(seeded(), &bytes.Buffer{})

	w := do(router, http.MethodGet, "/api/people/1/greet/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"greeting":"Hello Bob, I'm Alice!"}`, w.Body.String())

	logs := captureLogs(t)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/people/1/greet/7", "").Code)
	assert.Contains(t, logs.String(), "error getting person")
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/people/1/greet/x", "").Code)
}

func TestIntroduce(t *testing.T) {
	router := newRouter(seeded(), &bytes.Buffer{})

	w := do(router, http.MethodGet, "/api/people/3/greeting", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"greeting":"Hi, I'm Charlie!"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/people/9/greeting", "").Code)
}

func TestSendEmail(t *testing.T) {
	t.Run("email on file", func(t *testing.T) {
		var outbox bytes.Buffer
		router := newRouter(seeded(), &outbox)

		w := do(router, http.MethodPost, "/api/people/1/email", `{"message":"Hello!"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sent":true}`, w.Body.String())
		assert.Equal(t, "Sending to alice@example.com: Hello!\n", outbox.String())
	})

	t.Run("no email on file", func(t *testing.T) {
		var outbox bytes.Buffer
		router := newRouter(seeded(), &outbox)

		w := do(router, http.MethodPost, "/api/people/2/email", `{"message":""}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sent":false}`, w.Body.String())
		assert.Zero(t, outbox.Len())
	})

	t.Run("message required", func(t *testing.T) {
		var outbox bytes.Buffer
		router := newRouter(seeded(), &outbox)

		w := do(router, http.MethodPost, "/api/people/1/email", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "field Message is required")
		assert.Zero(t, outbox.Len())
	})

	t.Run("outbox write failure", func(t *testing.T) {
		logs := captureLogs(t)
		router := newRouter(seeded(), brokenOutbox{})

		w := do(router, http.MethodPost, "/api/people/1/email", `{"message":"Hello!"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "outbox write")
		assert.NotContains(t, w.Body.String(), `"sent"`)
		assert.Contains(t, logs.String(), "error writing to outbox")
		assert.Contains(t, logs.String(), "file already closed")
	})

	t.Run("no email with broken outbox is still a clean false", func(t *testing.T) {
		router := newRouter(seeded(), brokenOutbox{})

		w := do(router, http.MethodPost, "/api/people/2/email", `{"message":"hi"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sent":false}`, w.Body.String())
	})

	t.Run("unknown person", func(t *testing.T) {
		router := newRouter(seeded(), &bytes.Buffer{})

		w := do(router, http.MethodPost, "/api/people/9/email", `{"message":"hi"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
