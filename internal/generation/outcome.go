package generation

import "fmt"

// Outcome is the terminal result of one execution: Success or Failure.
type Outcome interface {
	isOutcome()
}

type Success struct {
	Text string
}

type Failure struct {
	Message string
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// RemoteCallError wraps whatever the remote capability returned or panicked with.
type RemoteCallError struct {
	Model string
	Err   error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.Model, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
