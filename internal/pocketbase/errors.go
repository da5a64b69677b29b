package pocketbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Validation codes returned by PocketBase in ResponseError.Data.
const (
	CodeNotUnique = "validation_not_unique"
	CodeRequired  = "validation_required"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoClientID       = errors.New("realtime connection has no client id")
)

// FieldError is a per-field validation failure.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseError is the error body PocketBase returns for any non-2xx response.
type ResponseError struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Data    map[string]FieldError `json:"data"`
}

func (e *ResponseError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("pocketbase: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("pocketbase: %d %s %v", e.Status, e.Message, e.Data)
}

// HasFieldCode reports whether the field failed validation with the given code.
func (e *ResponseError) HasFieldCode(field, code string) bool {
	fe, ok := e.Data[field]
	return ok && fe.Code == code
}

func newResponseError(status int, body string) *ResponseError {
	respErr := ResponseError{}
	if err := json.Unmarshal([]byte(body), &respErr); err != nil || respErr.Message == "" {
		respErr.Message = http.StatusText(status)
	}
	respErr.Status = status
	return &respErr
}

// IsNotUnique reports whether err is a validation_not_unique failure on field.
func IsNotUnique(err error, field string) bool {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.HasFieldCode(field, CodeNotUnique)
}

// IsNotFound reports whether err is a 404 from PocketBase.
func IsNotFound(err error) bool {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.Status == http.StatusNotFound
}
