// Package apperrors defines errors that are safe to show to API clients.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindNotFound
	KindDuplicate
	KindConflict
	KindUpstream
)

// APIError is an error with a client-facing message and HTTP status.
type APIError struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewErrValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, HTTPStatus: http.StatusBadRequest, Message: message}
}

func NewErrEmailIsTaken() *APIError {
	return &APIError{Kind: KindDuplicate, HTTPStatus: http.StatusBadRequest, Message: "User already exists"}
}

// NewErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
func NewErrInvalidCredentials() *APIError {
	return &APIError{Kind: KindValidation, HTTPStatus: http.StatusBadRequest, Message: "Invalid credentials"}
}

func NewErrMissingSessionToken() *APIError {
	return &APIError{Kind: KindAuthentication, HTTPStatus: http.StatusUnauthorized, Message: "Not authenticated (missing session cookie)"}
}

func NewErrInvalidSessionToken() *APIError {
	return &APIError{Kind: KindAuthentication, HTTPStatus: http.StatusUnauthorized, Message: "Invalid or expired session"}
}

// NewErrRecordNotFound is used both for missing records and records owned by someone else.
func NewErrRecordNotFound(entity string) *APIError {
	return &APIError{Kind: KindNotFound, HTTPStatus: http.StatusNotFound, Message: entity + " not found"}
}

func NewErrInvalidState(message string, err error) *APIError {
	return &APIError{Kind: KindConflict, HTTPStatus: http.StatusConflict, Message: message, Err: err}
}

func NewErrUpstream(message string, err error) *APIError {
	return &APIError{Kind: KindUpstream, HTTPStatus: http.StatusBadGateway, Message: message, Err: err}
}
