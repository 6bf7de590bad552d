package invoice

import (
	"errors"
	"strings"
)

var (
	// ErrOutOfRange indicates a line index outside the current collection.
	ErrOutOfRange = errors.New("line index out of range")
	// ErrUnknownField indicates an edit addressed a field that is not editable.
	ErrUnknownField = errors.New("unknown field")
	// ErrValidationFailed indicates submission was blocked by validation errors.
	ErrValidationFailed = errors.New("invoice validation failed")
)

// genericNotice is used when a failed validation produced no readable message.
const genericNotice = "Please fill all required fields correctly before generating the invoice."

// ValidationError carries the report that blocked a submission.
type ValidationError struct {
	Report ErrorReport
	Notice Notice
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + e.Notice.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Notice is the single user-facing message emitted when submission is blocked.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier receives notices raised by a session.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

func combinedNotice(report ErrorReport) Notice {
	messages := report.Messages()
	text := genericNotice
	if len(messages) > 0 {
		text = strings.Join(messages, "; ")
	}
	return Notice{Title: "Validation Error", Message: text}
}
