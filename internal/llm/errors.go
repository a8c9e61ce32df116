package llm

import "errors"

// ConnectionErrorMessage is the single user-facing failure text.
const ConnectionErrorMessage = "Critical connection error. Please ensure your query doesn't violate academic integrity policies and try again."

// ErrEmptyQuery is returned when a client is asked to answer blank text.
var ErrEmptyQuery = errors.New("query cannot be empty")

// CollaboratorError reports any failure talking to the model provider. Its
// message is deliberately uniform; the cause stays reachable via Unwrap for
// logs.
type CollaboratorError struct {
	Provider Provider
	Err      error
}

func (e *CollaboratorError) Error() string {
	return ConnectionErrorMessage
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func wrapFailure(provider Provider, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Provider: provider, Err: err}
}
