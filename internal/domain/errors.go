package domain

import "errors"

// Kind tags every assistant error with a flat classification.
type Kind string

// Error kinds surfaced by the assistant.
const (
	KindConfiguration     Kind = "configuration_error"
	KindAuthentication    Kind = "authentication_error"
	KindAPI               Kind = "api_error"
	KindRateLimited       Kind = "rate_limited"
	KindParser            Kind = "parser_error"
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found_error"
	KindEmbeddingSearch   Kind = "embedding_search_error"
	KindDatabaseBuild     Kind = "database_build_error"
	KindWorkoutGeneration Kind = "workout_generation_error"
	KindGeneration        Kind = "generation_error"
)

// Error carries a human-readable message together with its kind. An optional
// wrapped cause is preserved for errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around a cause, keeping the cause message visible.
func Wrap(kind Kind, message string, err error) *Error {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; unclassified errors report an
// empty kind.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
