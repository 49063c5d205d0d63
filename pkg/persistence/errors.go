package persistence

import (
	"errors"
	"fmt"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrAccountNotFound  = errors.New("remote account not found")

	// ErrInvalidKey is returned for identifiers that cannot be stored safely,
	// such as ids containing path separators.
	ErrInvalidKey = errors.New("invalid identifier")
)

// WorkflowError wraps workflow storage errors with the failing operation.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// AccountError wraps remote account storage errors.
type AccountError struct {
	Op      string
	OwnerID string
	Err     error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s operation failed for account of owner %s: %v", e.Op, e.OwnerID, e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

func NewAccountError(op, ownerID string, err error) *AccountError {
	return &AccountError{
		Op:      op,
		OwnerID: ownerID,
		Err:     err,
	}
}

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
