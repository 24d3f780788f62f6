package custom_error

import (
	"errors"
	"fmt"
	"net/http"
)

type NotFoundError struct {
	Resource       string
	ID             string
	OrganizationID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found in organization %s", e.Resource, e.ID, e.OrganizationID)
}

func NotFound(resource, id, organizationID string) error {
	return &NotFoundError{Resource: resource, ID: id, OrganizationID: organizationID}
}

// ConflictError reports a state transition that the current state does not allow.
type ConflictError struct {
	Resource       string
	ID             string
	OrganizationID string
	Reason         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s in organization %s: %s", e.Resource, e.ID, e.OrganizationID, e.Reason)
}

func Conflict(resource, id, organizationID, reason string) error {
	return &ConflictError{Resource: resource, ID: id, OrganizationID: organizationID, Reason: reason}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	// already classified errors pass through untouched
	var (
		storageErr  *StorageError
		uniqueErr   *UniqueViolationError
		foreignErr  *ForeignKeyViolationError
		notFoundErr *NotFoundError
		conflictErr *ConflictError
	)
	if errors.As(err, &storageErr) || errors.As(err, &uniqueErr) || errors.As(err, &foreignErr) ||
		errors.As(err, &notFoundErr) || errors.As(err, &conflictErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

func Invalid(field, value, message string) error {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StatusCode maps an error kind onto the HTTP status returned to clients.
func StatusCode(err error) int {
	var (
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
		uniqueErr     *UniqueViolationError
		foreignErr    *ForeignKeyViolationError
		validationErr *ValidationError
	)

	switch {
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr), errors.As(err, &uniqueErr), errors.As(err, &foreignErr):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
