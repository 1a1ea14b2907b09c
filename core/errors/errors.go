package errors

import "errors"

// Category identifies a failure class. Categories marked fatal at wrap time
// abort startup; the rest are answered as failure responses and the worker
// keeps serving.
type Category string

const (
	CategoryArtifactNotFound     Category = "artifact_not_found"
	CategoryKeyNotFound          Category = "key_not_found"
	CategoryMalformedArtifact    Category = "malformed_artifact"
	CategoryDecryptionFailed     Category = "decryption_failed"
	CategoryIntegrityCheckFailed Category = "integrity_check_failed"
	CategoryUnreadableImage      Category = "unreadable_image"
	CategoryInvalidRequest       Category = "invalid_request"
	CategoryInternalFailure      Category = "internal_failure"
)

type classifiedError struct {
	category Category
	code     string
	fatal    bool
	cause    error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func (e *classifiedError) Category() Category {
	return e.category
}

func (e *classifiedError) Code() string {
	return e.code
}

func (e *classifiedError) Fatal() bool {
	return e.fatal
}

// Wrap classifies cause. A nil cause returns nil so call sites can wrap
// unconditionally.
func Wrap(cause error, category Category, code string, fatal bool) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		category: category,
		code:     code,
		fatal:    fatal,
		cause:    cause,
	}
}

func CategoryOf(err error) Category {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.category
	}
	return ""
}

func CodeOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.code
	}
	return ""
}

// FatalOf reports whether err must terminate the process before the worker
// reaches Ready. Unclassified errors default to non-fatal so a stray error
// at the request boundary can never kill the loop.
func FatalOf(err error) bool {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.fatal
	}
	return false
}
