package notebook

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidType is returned when an item type is not quote or insight.
	ErrInvalidType = errors.New("invalid evidence type")

	// ErrMalformedNotebook is returned by Load when the durable value cannot
	// be decoded or violates the notebook invariants.
	ErrMalformedNotebook = errors.New("malformed notebook value")

	// ErrIDCollision is returned when no unused id could be generated.
	ErrIDCollision = errors.New("could not generate a unique evidence id")
)

// PersistError reports a failed durable write after the in-memory notebook
// was already mutated. The mutation is kept; callers decide whether to retry
// with Store.Sync or to compensate.
type PersistError struct {
	// Op is the mutation that triggered the write ("append", "remove", "sync").
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist notebook after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
