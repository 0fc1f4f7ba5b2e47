package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a validation failure
type Kind int

const (
	Unknown Kind = iota
	NotADirectory
	UnregisteredType
	MissingRequiredFile
	MalformedMetadata
	UnsupportedVersion
	TypeContractViolation
	DimensionMismatch
	CountMismatch
	OutOfRangeIndex
	UnsortedCoordinate
	DuplicateKey
	InvalidFormatValue
	CorruptSignature
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case NotADirectory:
		return "not_a_directory"
	case UnregisteredType:
		return "unregistered_type"
	case MissingRequiredFile:
		return "missing_required_file"
	case MalformedMetadata:
		return "malformed_metadata"
	case UnsupportedVersion:
		return "unsupported_version"
	case TypeContractViolation:
		return "type_contract_violation"
	case DimensionMismatch:
		return "dimension_mismatch"
	case CountMismatch:
		return "count_mismatch"
	case OutOfRangeIndex:
		return "out_of_range_index"
	case UnsortedCoordinate:
		return "unsorted_or_duplicate_coordinate"
	case DuplicateKey:
		return "duplicate_key"
	case InvalidFormatValue:
		return "invalid_format_value"
	case CorruptSignature:
		return "corrupt_signature"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Kind
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Frame identifies one level of the object tree an error passed through
// on its way up to the caller.
type Frame struct {
	Path string `json:"path"`
	Role string `json:"role,omitempty"`
}

// ValidationError is the error type raised by every validator. Frames
// accumulate from the failing leaf outward, so Frames[len-1] is the
// outermost object and Frames[0] is closest to the failure.
type ValidationError struct {
	Kind    Kind
	Message string
	Frames  []Frame
}

// New creates a ValidationError of the given kind
func New(kind Kind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface; the message is the concatenated
// context chain from the outermost object down to the failing leaf.
func (e *ValidationError) Error() string {
	var b strings.Builder
	for i := len(e.Frames) - 1; i >= 0; i-- {
		f := e.Frames[i]
		switch {
		case f.Path != "" && f.Role != "":
			b.WriteString(fmt.Sprintf("failed to validate '%s' at '%s'; ", f.Role, f.Path))
		case f.Path != "":
			b.WriteString(fmt.Sprintf("failed to validate '%s'; ", f.Path))
		default:
			b.WriteString(fmt.Sprintf("failed to validate '%s'; ", f.Role))
		}
	}
	b.WriteString(e.Message)
	return b.String()
}

// WithFrame returns the error with an added context frame
func (e *ValidationError) WithFrame(path, role string) *ValidationError {
	e.Frames = append(e.Frames, Frame{Path: path, Role: role})
	return e
}

// Is reports whether target is a ValidationError of the same kind,
// making kinds usable with the standard errors.Is machinery.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// MarshalJSON implements json.Marshaler
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind    `json:"kind"`
		Message string  `json:"message"`
		Frames  []Frame `json:"frames"`
	}{
		Kind:    e.Kind,
		Message: e.Message,
		Frames:  e.Frames,
	})
}

// KindOf returns the kind of err if it is a ValidationError, Unknown otherwise
func KindOf(err error) Kind {
	if ve, ok := err.(*ValidationError); ok {
		return ve.Kind
	}
	return Unknown
}

// Wrap adds a (path, role) context frame to err. Non-ValidationError
// errors (I/O failures from the container layer, mostly) are absorbed
// into an Unknown-kind ValidationError so the chain stays structured.
func Wrap(err error, path, role string) *ValidationError {
	ve, ok := err.(*ValidationError)
	if !ok {
		ve = &ValidationError{Kind: Unknown, Message: err.Error()}
	}
	return ve.WithFrame(path, role)
}
