package cart

import "fmt"

// Persistence operations.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// PersistenceError describes a failed slot read or write. These are recovered inside the Store
// (logged and counted) and never returned from a mutation.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
