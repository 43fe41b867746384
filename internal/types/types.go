// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and the demo command can all import types without
// depending on each other.
package types

import (
	"fmt"
	"io"
)

// AdultAge is the age at which a person counts as an adult.
const AdultAge = 18

// Person represents a person record in our system.
//
// Email is a pointer so that "no email on file" (nil) stays distinct from
// an empty address (pointer to ""). A sentinel string could not tell the
// two apart.
//
// Age is never range-checked: a negative age is stored and returned as-is.
type Person struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Age   int     `json:"age"`
	Email *string `json:"email"`
}

// NewPerson creates a Person with no email on file.
func NewPerson(name string, age int) Person {
	return Person{
		Name: name,
		Age:  age,
	}
}

// WithEmail returns a copy of p carrying the given email address.
// The receiver is left untouched.
func (p Person) WithEmail(email string) Person {
	p.Email = &email
	return p
}

// HasEmail reports whether an email address is on file, even an empty one.
func (p Person) HasEmail() bool {
	return p.Email != nil
}

// Greet returns a greeting from p to other.
func (p Person) Greet(other Person) string {
	return fmt.Sprintf("Hello %s, I'm %s!", other.Name, p.Name)
}

// IsAdult reports whether p is 18 or older.
func (p Person) IsAdult() bool {
	return p.Age >= AdultAge
}

// SendEmail simulates sending message to p.
//
// With no email on file it returns false and writes nothing to out.
// Otherwise exactly one line naming the address and the message is
// written to out and it returns true. There is no real transport.
//
// The result only says whether a send was attempted; a failing out does
// not turn it into false. Callers that care wrap out to keep the error.
func (p Person) SendEmail(out io.Writer, message string) bool {
	if p.Email == nil {
		return false
	}
	fmt.Fprintf(out, "Sending to %s: %s\n", *p.Email, message)
	return true
}

// String implements fmt.Stringer, e.g. "Alice (age 30), email: alice@example.com".
func (p Person) String() string {
	s := fmt.Sprintf("%s (age %d)", p.Name, p.Age)
	if p.Email != nil {
		s += fmt.Sprintf(", email: %s", *p.Email)
	}
	return s
}

// Equal compares two records field by field. Emails are compared by value,
// so two absent emails are equal but absent and "" are not.
func (p Person) Equal(other Person) bool {
	if p.ID != other.ID || p.Name != other.Name || p.Age != other.Age {
		return false
	}
	if p.Email == nil || other.Email == nil {
		return p.Email == nil && other.Email == nil
	}
	return *p.Email == *other.Email
}

// Greeting returns p's self-introduction, e.g. "Hi, I'm Alice!".
func (p Person) Greeting() string {
	return fmt.Sprintf("Hi, I'm %s!", p.Name)
}

// Greeter is anything that can greet a person.
type Greeter interface {
	Greet(other Person) string
}

// Greetable is anything that can introduce itself.
type Greetable interface {
	Greeting() string
}

// FindAdults returns the adults in people, keeping their original order.
// The input slice is not modified; the result is never nil.
func FindAdults(people []Person) []Person {
	adults := make([]Person, 0, len(people))
	for _, p := range people {
		if p.IsAdult() {
			adults = append(adults, p)
		}
	}
	return adults
}

// CountAdults returns how many of people are adults.
func CountAdults(people []Person) int {
	n := 0
	for _, p := range people {
		if p.IsAdult() {
			n++
		}
	}
	return n
}

// Names returns the name of each person, in order.
func Names(people []Person) []string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	return names
}
