package utils

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags an Error. Callers branch on the kind, never on the message.
type Kind string

const (
	KindNotInTermTime    Kind = "NotInTermTime"
	KindInvalidTime      Kind = "InvalidTime"
	KindInvalidDuration  Kind = "InvalidDuration"
	KindInvalidPrice     Kind = "InvalidPrice"
	KindOverlap          Kind = "Overlap"
	KindLanguageMismatch Kind = "LanguageMismatch"
	KindTermMismatch     Kind = "TermMismatch"
	KindTutorUnavailable Kind = "TutorUnavailable"
	KindTutorConflict    Kind = "TutorConflict"
	KindStudentConflict  Kind = "StudentConflict"
	KindAlreadyAllocated Kind = "AlreadyAllocated"
	KindRequestDenied    Kind = "RequestDenied"
	KindNotOwned         Kind = "NotOwned"
	KindNotAuthorized    Kind = "NotAuthorized"
	KindNotPaid          Kind = "NotPaid"
	KindNotFound         Kind = "NotFound"
	KindDuplicate        Kind = "Duplicate"
	KindInUse            Kind = "InUse"
	KindInvoiceSettled   Kind = "InvoiceSettled"
	KindInvalid          Kind = "Invalid"
)

// Error is a domain failure. Field names the offending input and Date the
// offending occurrence, when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Date    *time.Time
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Date != nil {
		msg = fmt.Sprintf("%s on %s", msg, e.Date.Format(DateLayout))
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrOverlap)
// holds for every overlap regardless of date or field.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

const DateLayout = "2006-01-02"

var (
	ErrNotInTermTime    = &Error{Kind: KindNotInTermTime, Message: "date is not in term time"}
	ErrInvalidTime      = &Error{Kind: KindInvalidTime, Message: "start time must be before end time"}
	ErrInvalidDuration  = &Error{Kind: KindInvalidDuration, Message: "invalid lesson duration"}
	ErrInvalidPrice     = &Error{Kind: KindInvalidPrice, Message: "invalid price"}
	ErrOverlap          = &Error{Kind: KindOverlap, Message: "overlaps an existing availability window"}
	ErrLanguageMismatch = &Error{Kind: KindLanguageMismatch, Message: "tutor does not teach the requested language"}
	ErrTermMismatch     = &Error{Kind: KindTermMismatch, Message: "date is not in the requested term"}
	ErrTutorUnavailable = &Error{Kind: KindTutorUnavailable, Message: "tutor is not available"}
	ErrTutorConflict    = &Error{Kind: KindTutorConflict, Message: "tutor already has a lesson at that time"}
	ErrStudentConflict  = &Error{Kind: KindStudentConflict, Message: "student already has a lesson at that time"}
	ErrAlreadyAllocated = &Error{Kind: KindAlreadyAllocated, Message: "request has already been allocated"}
	ErrRequestDenied    = &Error{Kind: KindRequestDenied, Message: "request has been denied"}
	ErrNotOwned         = &Error{Kind: KindNotOwned, Message: "record belongs to another user"}
	ErrNotAuthorized    = &Error{Kind: KindNotAuthorized, Message: "not authorized"}
	ErrNotPaid          = &Error{Kind: KindNotPaid, Message: "invoice has not been paid"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicate        = &Error{Kind: KindDuplicate, Message: "already exists"}
	ErrInUse            = &Error{Kind: KindInUse, Message: "still referenced by lessons"}
	ErrInvoiceSettled   = &Error{Kind: KindInvoiceSettled, Message: "lesson is bound to a paid invoice"}
	ErrInvalid          = &Error{Kind: KindInvalid, Message: "invalid value"}
)

// OnDate copies a sentinel and attaches the offending date.
func OnDate(sentinel *Error, date time.Time) *Error {
	e := *sentinel
	d := date
	e.Date = &d
	return &e
}

// WithField copies a sentinel and attaches the offending field.
func WithField(sentinel *Error, field string) *Error {
	e := *sentinel
	e.Field = field
	return &e
}

// Newf copies a sentinel with a specific message.
func Newf(sentinel *Error, format string, args ...interface{}) *Error {
	e := *sentinel
	e.Message = fmt.Sprintf(format, args...)
	return &e
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
