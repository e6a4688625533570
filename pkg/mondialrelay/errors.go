package mondialrelay

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a carrier error.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryValidation     Category = "validation"
	CategoryBusiness       Category = "business"
	CategoryTracking       Category = "tracking"
	CategorySystem         Category = "system"
	CategoryTransport      Category = "transport"
	CategoryUnknown        Category = "unknown"
)

// Severity grades how serious a carrier error is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Error represents a failure reported by, or while talking to, the
// Mondial Relay web services. Code holds the carrier STAT code when the
// carrier rejected the call; Transport marks faults that happened before
// a STAT code could be obtained (network, HTTP, envelope parsing).
type Error struct {
	Code      int
	Message   string
	Operation string
	Params    map[string]string
	Response  string
	Transport bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mondial relay error (code %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("mondial relay error (code %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for Error. Two errors match when they carry
// the same STAT code and the same transport flag.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Transport == t.Transport
}

// Category returns the taxonomy bucket for the error. Codes present in
// more than one carrier bucket resolve in documented order:
// authentication, validation, business, tracking, system.
func (e *Error) Category() Category {
	if e.Transport {
		return CategoryTransport
	}
	switch {
	case inSet(authenticationCodes, e.Code):
		return CategoryAuthentication
	case inSet(validationCodes, e.Code):
		return CategoryValidation
	case inSet(businessCodes, e.Code):
		return CategoryBusiness
	case inSet(trackingCodes, e.Code):
		return CategoryTracking
	case inSet(systemCodes, e.Code):
		return CategorySystem
	default:
		return CategoryUnknown
	}
}

// Severity returns the severity grade for the error.
func (e *Error) Severity() Severity {
	switch {
	case inSet(trackingCodes, e.Code) && !e.Transport:
		return SeverityInfo
	case e.Code == 60:
		return SeverityWarning
	case e.Category() == CategoryAuthentication || e.Category() == CategorySystem:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// Recoverable reports whether retrying with corrected input can
// succeed. Authentication and service-level failures cannot be fixed by
// the caller; transport faults are considered transient.
func (e *Error) Recoverable() bool {
	if e.Transport {
		return true
	}
	return !inSet(unrecoverableCodes, e.Code)
}

// UserMessage returns the carrier's, or the error's own, human-readable
// message without the diagnostic suffixes.
func (e *Error) UserMessage() string {
	if msg, ok := StatusMessages[e.Code]; ok {
		return msg
	}
	return e.Message
}

// Actions returns remediation guidance for the error.
func (e *Error) Actions() []string {
	return SuggestedActions(e.Code)
}

func inSet(set map[int]struct{}, code int) bool {
	_, ok := set[code]
	return ok
}

// NewAPIError builds an Error from a non-zero STAT code. The message is
// the documented carrier message enriched with the operation and the
// submitted parameters most useful for debugging.
func NewAPIError(operation string, code int, params map[string]string, rawResponse string) *Error {
	msg := StatusMessage(code)
	if operation != "" {
		msg += fmt.Sprintf(" (Méthode: %s)", operation)
	}
	if v := params["CP"]; v != "" {
		msg += " - Code postal: " + v
	}
	if v := params["Pays"]; v != "" {
		msg += " - Pays: " + v
	}
	if v := params["Enseigne"]; v != "" {
		msg += " - Enseigne: " + v
	}
	msg += fmt.Sprintf(" [Code erreur API: %d]", code)

	return &Error{
		Code:      code,
		Message:   msg,
		Operation: operation,
		Params:    params,
		Response:  rawResponse,
	}
}

// NewValidationError builds an Error for input rejected before any call
// to the carrier. The STAT code 98 is the carrier's generic
// invalid-parameters code.
func NewValidationError(operation string, issues []string) *Error {
	return &Error{
		Code:      98,
		Message:   "Données invalides: " + strings.Join(issues, "; "),
		Operation: operation,
	}
}

// NewTransportError wraps a failure that happened before the carrier
// returned a STAT code.
func NewTransportError(operation string, cause error, params map[string]string) *Error {
	return &Error{
		Message:   "échec de l'appel au service Mondial Relay",
		Operation: operation,
		Params:    params,
		Transport: true,
		Cause:     cause,
	}
}

// Sentinel errors for failures outside the carrier STAT taxonomy.
var (
	// ErrUnknownLabelFormat indicates a label format other than A4, A5 or 10x15.
	ErrUnknownLabelFormat = errors.New("unknown label format")

	// ErrLabelDownload indicates the label PDF could not be fetched.
	ErrLabelDownload = errors.New("label download failed")
)

// IsRecoverable returns true if the error can be retried after
// correcting the input, or is a transient transport fault.
func IsRecoverable(err error) bool {
	var mrErr *Error
	if errors.As(err, &mrErr) {
		return mrErr.Recoverable()
	}
	return false
}

// ErrorCategory extracts the taxonomy bucket from any error.
func ErrorCategory(err error) Category {
	var mrErr *Error
	if errors.As(err, &mrErr) {
		return mrErr.Category()
	}
	return CategoryUnknown
}
