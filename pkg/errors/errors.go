package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeBackend     Code = "BACKEND_ERROR"
	CodePaymentInit Code = "PAYMENT_INIT_ERROR"
	CodeConnection  Code = "CONNECTION_ERROR"
	CodeInternal    Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable     bool
	Blocking      bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:     false,
		Blocking:      false,
		PublicMessage: "validation failed",
	},
	CodeNotFound: {
		Retryable:     false,
		Blocking:      false,
		PublicMessage: "resource not found",
	},
	CodeBackend: {
		Retryable:     false,
		Blocking:      false,
		PublicMessage: "request failed",
	},
	CodePaymentInit: {
		Retryable:     false,
		Blocking:      false,
		PublicMessage: "payment could not be started",
	},
	CodeConnection: {
		Retryable:     true,
		Blocking:      false,
		PublicMessage: "connection lost",
	},
	CodeInternal: {
		Retryable:     false,
		Blocking:      true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// FromStatus classifies a non-success backend response status.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status >= 400 && status < 500:
		return CodeValidation
	default:
		return CodeBackend
	}
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// UserMessage returns the text shown in the notification affordance: the
// wrapped message when one was set, else the code's public fallback.
func UserMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	if typed.Message() != "" {
		return typed.Message()
	}
	return MetadataFor(typed.Code()).PublicMessage
}
