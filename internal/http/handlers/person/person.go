// Package person contains all HTTP handlers related to the Person resource.
//
// Every exported function is a factory: it receives its dependencies once
// at route registration and returns the http.HandlerFunc that runs on each
// request.
//
//	router.HandleFunc("POST /api/people", person.New(storage))
package person

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/aanand-mishra/people-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Request is the JSON body accepted by New and Update.
//
// Age is a pointer so "required" only checks that the field was sent:
// 0 and negative ages are valid. Email has no format rule; null or a
// missing key means no email, "" is an empty address.
type Request struct {
	Name  string  `json:"name"  validate:"required"`
	Age   *int    `json:"age"   validate:"required"`
	Email *string `json:"email"`
}

func (r Request) person() types.Person {
	return types.Person{Name: r.Name, Age: *r.Age, Email: r.Email}
}

// EmailRequest is the JSON body accepted by SendEmail.
type EmailRequest struct {
	Message *string `json:"message" validate:"required"`
}

var validate = validator.New()

// decode reads a JSON body into v and runs the validate:"..." rules.
// On failure the error response is already written and false is returned.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

// pathID parses the named path segment as an int64 ID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// outboxWriter remembers the first error returned by the wrapped writer.
type outboxWriter struct {
	w   io.Writer
	err error
}

func (o *outboxWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if err != nil && o.err == nil {
		o.err = err
	}
	return n, err
}

// storageError maps storage.ErrNotFound to 404 and everything else to 500.
func storageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, storage.ErrNotFound) {
		status = http.StatusNotFound
	}
	response.WriteJSON(w, status, response.GeneralError(err))
}

// New handles POST /api/people
//
//	{ "name": "Alice", "age": 30, "email": "alice@example.com" }
//
// Responds 201 with { "id": 1 }.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a person")

		var req Request
		if !decode(w, r, &req) {
			return
		}

		lastID, err := storage.CreatePerson(req.Name, *req.Age, req.Email)
		if err != nil {
			slog.Error("error creating person", slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		slog.Info("person created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetByID handles GET /api/people/{id}
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a person", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		person, err := storage.GetPersonByID(id)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, person)
	}
}

// GetList handles GET /api/people
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all people")

		people, err := storage.GetPeople()
		if err != nil {
			slog.Error("error getting people", slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, people)
	}
}

// GetAdults handles GET /api/people/adults
// Same shape as GetList, minors filtered out, order kept.
func GetAdults(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting adults")

		people, err := storage.GetPeople()
		if err != nil {
			slog.Error("error getting people", slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		adults := types.FindAdults(people)
		slog.Debug("filtered adults",
			slog.Int("total", len(people)),
			slog.Int("adults", types.CountAdults(people)))

		response.WriteJSON(w, http.StatusOK, adults)
	}
}

// Update handles PUT /api/people/{id}
// Replaces every field, so the body follows the same rules as New.
// A body identical to the stored record is answered without a write.
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a person", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req Request
		if !decode(w, r, &req) {
			return
		}

		current, err := storage.GetPersonByID(id)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		requested := req.person()
		requested.ID = id
		if current.Equal(requested) {
			slog.Info("person unchanged", slog.Int64("id", id))
			response.WriteJSON(w, http.StatusOK, current)
			return
		}

		updated, err := storage.UpdatePersonByID(id, requested)
		if err != nil {
			slog.Error("error updating person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		slog.Info("person updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/people/{id}
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a person", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := storage.DeletePersonByID(id); err != nil {
			slog.Error("error deleting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		slog.Info("person deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Greet handles GET /api/people/{id}/greet/{other}
//
//	{ "greeting": "Hello Bob, I'm Alice!" }
func Greet(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		otherID, ok := pathID(w, r, "other")
		if !ok {
			return
		}

		slog.Info("greeting",
			slog.Int64("from", id),
			slog.Int64("to", otherID))

		person, err := storage.GetPersonByID(id)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}
		other, err := storage.GetPersonByID(otherID)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", otherID),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			map[string]string{"greeting": person.Greet(other)})
	}
}

// Introduce handles GET /api/people/{id}/greeting
//
//	{ "greeting": "Hi, I'm Alice!" }
func Introduce(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("introducing a person", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		person, err := storage.GetPersonByID(id)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		var g types.Greetable = person
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"greeting": g.Greeting()})
	}
}

// SendEmail handles POST /api/people/{id}/email
//
//	{ "message": "Hello!" }
//
// Responds 200 with { "sent": true } after writing one line to outbox, or
// { "sent": false } when the person has no email on file. A person
// without an email is not an error; a failed outbox write is a 500.
func SendEmail(storage storage.Storage, outbox io.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("sending email", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req EmailRequest
		if !decode(w, r, &req) {
			return
		}

		person, err := storage.GetPersonByID(id)
		if err != nil {
			slog.Error("error getting person",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			storageError(w, err)
			return
		}

		sink := &outboxWriter{w: outbox}
		sent := person.SendEmail(sink, *req.Message)
		if sink.err != nil {
			slog.Error("error writing to outbox",
				slog.Int64("id", id),
				slog.String("error", sink.err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(fmt.Errorf("outbox write: %w", sink.err)))
			return
		}

		slog.Info("email processed",
			slog.Int64("id", id),
			slog.Bool("sent", sent))

		response.WriteJSON(w, http.StatusOK, map[string]bool{"sent": sent})
	}
}
