package requestbody

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Decode error kinds
var (
	ErrMalformedBody  = errors.New("malformed request body")
	ErrSchemaMismatch = errors.New("request body schema mismatch")
	ErrIOFailure      = errors.New("request body could not be read")
)

// DecodeError describes why a request body could not become a record.
// It unwraps to both its Kind and its Cause.
type DecodeError struct {
	Kind  error
	Field string
	Cause error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to reach the kind and the cause
func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func malformed(cause error) *DecodeError {
	return &DecodeError{Kind: ErrMalformedBody, Cause: cause}
}

func mismatch(field string, cause error) *DecodeError {
	return &DecodeError{Kind: ErrSchemaMismatch, Field: field, Cause: cause}
}

// Outcome names the result of a decode for metrics labels
func Outcome(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedBody):
		return "malformed"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.As(err, &tooLarge):
		return "too_large"
	case errors.Is(err, ErrIOFailure):
		return "io_failure"
	default:
		return "error"
	}
}

// Classify maps an error returned while binding a body into the decode taxonomy.
// Errors that already are a *DecodeError are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return malformed(err)
	case errors.As(err, &typeErr):
		return mismatch(typeErr.Field, err)
	default:
		return &DecodeError{Kind: ErrIOFailure, Cause: err}
	}
}
