package core

import "fmt"

// Error taxonomy for the client. Callers branch with errors.As:
//
//   - TransportError: the request never produced a response
//   - RemoteError: the service answered with a non-success status
//   - ValidationError: a client-side precondition failed, nothing was sent
//   - StorageError: local persistence failed; absorbed at the call site
type (
	TransportError struct {
		Op  string
		Err error
	}

	RemoteError struct {
		Op      string
		Status  int
		Message string
	}

	ValidationError struct {
		Err error
	}

	StorageError struct {
		Op  string
		Err error
	}
)

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: remote error (status %d)", e.Op, e.Status)
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
