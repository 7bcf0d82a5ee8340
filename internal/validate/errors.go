package validate

import "errors"

// Kind categorizes a usage error.
type Kind string

const (
	// InvalidChoice indicates a value outside its allowed set
	InvalidChoice Kind = "invalid_choice"
	// InvalidDateFormat indicates a date that is not a real YYYY-MM-DD date
	InvalidDateFormat Kind = "invalid_date_format"
	// InvalidRange indicates a start date after its end date
	InvalidRange Kind = "invalid_range"
	// TooManyOptions indicates more mutually exclusive options than allowed
	TooManyOptions Kind = "too_many_options"
	// MissingOption indicates a required option group with nothing supplied
	MissingOption Kind = "missing_option"
	// InvalidNumber indicates a value that must be numeric but is not
	InvalidNumber Kind = "invalid_number"
	// InvalidArgument covers malformed positional arguments, flags and filters
	InvalidArgument Kind = "invalid_argument"
)

// UsageError reports input rejected before any request is made.
type UsageError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *UsageError) Error() string {
	return e.Message
}

// Usage returns a UsageError of the given kind.
func Usage(kind Kind, message string) *UsageError {
	return &UsageError{Kind: kind, Message: message}
}

// IsUsage reports whether err is, or wraps, a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// KindOf returns the kind of the UsageError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}
