// Package outbox is the sink for simulated email sends.
//
// Nothing is delivered anywhere: each send becomes one line in a writer
// (standard output or an append-only file). The mutex keeps lines from
// concurrent requests from interleaving.
package outbox

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Outbox serialises writes to an underlying writer.
type Outbox struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// New wraps w. The caller keeps ownership of w.
func New(w io.Writer) *Outbox {
	return &Outbox{w: w}
}

// Open returns an Outbox appending to the file at path, or writing to
// standard output when path is empty.
func Open(path string) (*Outbox, error) {
	if path == "" {
		return New(os.Stdout), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("outbox.Open: %w", err)
	}

	return &Outbox{w: f, closer: f}, nil
}

// Write implements io.Writer.
func (o *Outbox) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

// Close closes the file opened by Open. It is a no-op for New.
func (o *Outbox) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}
