// Package services provides the application layer on top of the deployment
// orchestrator, and the error taxonomy the HTTP layer maps to status codes.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowgate/pkg/analysis"
	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/go-playground/validator/v10"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrEmptyOwnerID         = errors.New("owner ID cannot be empty")
	ErrInvalidGraph         = analysis.ErrInvalidGraph
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrNodesRequired        = errors.New("workflow must have at least one node")

	// Not found (404).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrAccountNotFound  = persistence.ErrAccountNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	var validationErrors validator.ValidationErrors

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrInvalidGraph) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.As(err, &validationErrors)
}

// IsConfigurationError reports a missing remote server address or API key.
// It maps to HTTP 400: the caller has to connect an account first.
func IsConfigurationError(err error) bool {
	return errors.Is(err, remote.ErrNotConfigured)
}

// IsConflictError checks if an error is a lifecycle precondition failure that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, deployment.ErrCredentialsPending) ||
		errors.Is(err, deployment.ErrNotDeployed) ||
		errors.Is(err, deployment.ErrInvalidTransition)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsWorkflowNotFound(err) || persistence.IsAccountNotFound(err)
}

// IsRemoteError reports a rejection or transport failure of the remote
// server. It maps to HTTP 502 carrying the remote message.
func IsRemoteError(err error) bool {
	return remote.IsRemoteFailure(err) || errors.Is(err, deployment.ErrMissingRemoteID)
}
