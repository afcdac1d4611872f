package relations

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/lib/pq"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// ReplaceStage names which half of a delete-then-insert replacement failed.
type ReplaceStage string

const (
	StageDelete ReplaceStage = "delete"
	StageInsert ReplaceStage = "insert"
)

// ValidationError rejects a payload before anything is written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationErrorf builds a ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ReferentialViolationError means a reference or assignment pointed at a
// nonexistent target. The offending row was not written.
type ReferentialViolationError struct {
	Message string
	Err     error
}

func (e *ReferentialViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("referential violation: %s: %v", e.Message, e.Err)
	}
	return "referential violation: " + e.Message
}

func (e *ReferentialViolationError) Unwrap() error {
	return e.Err
}

// ConflictError means a delete was blocked by a structural dependency held
// elsewhere. Nothing was deleted.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict: %s: %v", e.Message, e.Err)
	}
	return "conflict: " + e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NotFoundError means the addressed row does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StoreError wraps an infrastructure-level storage failure. The operation is
// safe to retry as a whole: replacement converges to the same end state.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ReplaceError reports a failed relation replacement. Emptied distinguishes
// "the delete succeeded and the insert failed, so the kind is now empty" from
// "the delete itself failed and the kind is unchanged".
type ReplaceError struct {
	Kind    models.RelationKind
	Stage   ReplaceStage
	Emptied bool
	Err     error
}

func (e *ReplaceError) Error() string {
	if e.Emptied {
		return fmt.Sprintf("replace %s: %s failed, relation left empty: %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("replace %s: %s failed, relation unchanged: %v", e.Kind, e.Stage, e.Err)
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}

// PartialMutationError reports that the host row persisted but a relation
// kind's replacement failed. Applied kinds also persist; only FailedKind needs
// to be resubmitted.
type PartialMutationError struct {
	HostType   models.HostType
	HostID     string
	Applied    []models.RelationKind
	FailedKind models.RelationKind
	Err        error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("partial mutation of %s %s: %s failed after %d kinds applied: %v",
		e.HostType, e.HostID, e.FailedKind, len(e.Applied), e.Err)
}

func (e *PartialMutationError) Unwrap() error {
	return e.Err
}

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

// ClassifyWrite maps a storage error from an insert/update into the engine
// taxonomy. The existence-validator trigger raises foreign_key_violation, so
// both it and structural FKs land on ReferentialViolationError.
func ClassifyWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqForeignKeyViolation:
			return &ReferentialViolationError{Message: op, Err: err}
		case pqCheckViolation, pqUniqueViolation:
			return &ValidationError{Message: fmt.Sprintf("%s: %s", op, pqErr.Message)}
		}
		if pqErr.Code.Class() == "08" {
			return &StoreError{Op: op, Err: err}
		}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return &StoreError{Op: op, Err: err}
	}
	return &StoreError{Op: op, Err: err}
}

// ClassifyDelete maps a storage error from a delete. A foreign key violation
// here means something still depends on the row, which is a Conflict.
func ClassifyDelete(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
		return &ConflictError{Message: op, Err: err}
	}
	return &StoreError{Op: op, Err: err}
}

// ToHTTPError converts an engine error into the HTTP error shape rendered by
// the shared error middleware.
func ToHTTPError(err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return httperror.NewHTTPError(http.StatusBadRequest, validationErr.Message)
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return httperror.NewHTTPError(http.StatusNotFound, notFoundErr.Error())
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return httperror.NewHTTPError(http.StatusConflict, conflictErr.Error())
	}

	var refErr *ReferentialViolationError
	if errors.As(err, &refErr) {
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, refErr.Error())
	}

	var partialErr *PartialMutationError
	if errors.As(err, &partialErr) {
		httpErr := httperror.NewHTTPError(http.StatusMultiStatus, partialErr.Error())
		httpErr = httpErr.AddMetaValue("host_id", partialErr.HostID)
		httpErr = httpErr.AddMetaValue("failed_kind", string(partialErr.FailedKind))
		applied := make([]string, 0, len(partialErr.Applied))
		for _, kind := range partialErr.Applied {
			applied = append(applied, string(kind))
		}
		return httpErr.AddMetaValue("applied_kinds", applied)
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, storeErr.Error())
	}

	return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
}
