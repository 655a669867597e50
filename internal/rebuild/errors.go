package rebuild

import (
	"errors"
	"fmt"
)

// ErrConversion marks a rebuild aborted because the metadata could not be
// turned into a target snapshot. Nothing has been executed when it occurs.
var ErrConversion = errors.New("metadata conversion failed")

// ErrHook marks a rebuild aborted by a pre or post hook failure.
var ErrHook = errors.New("rebuild hook failed")

// StatementError records one statement that failed against the connection.
// These are caught and aggregated, never propagated mid-run: execution
// continues with the next statement.
type StatementError struct {
	SQL string
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %s: %v", e.SQL, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
