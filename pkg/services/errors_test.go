package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		validation    bool
		configuration bool
		conflict      bool
		notFound      bool
		remote        bool
	}{
		{name: "name required", err: ErrWorkflowNameRequired, validation: true},
		{name: "wrapped invalid graph", err: NewValidationError("op", "INVALID_GRAPH", "bad", ErrInvalidGraph), validation: true},
		{name: "not configured", err: fmt.Errorf("deploy: %w", remote.ErrNotConfigured), configuration: true},
		{name: "credentials pending", err: deployment.ErrCredentialsPending, conflict: true},
		{name: "invalid transition", err: deployment.ErrInvalidTransition, conflict: true},
		{name: "workflow not found", err: persistence.NewWorkflowError("get", "wf-1", ErrWorkflowNotFound), notFound: true},
		{name: "account not found", err: persistence.NewAccountError("get", "o", ErrAccountNotFound), notFound: true},
		{name: "remote rejection", err: &remote.Error{Op: "create_workflow", StatusCode: 400, Message: "bad"}, remote: true},
		{name: "transport", err: &remote.TransportError{Op: "get_workflow", Err: errors.New("refused")}, remote: true},
		{name: "unexpected", err: errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.configuration, IsConfigurationError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.remote, IsRemoteError(tt.err))
		})
	}
}

func TestServiceError(t *testing.T) {
	err := NewValidationError("upload", "INVALID_GRAPH", "nodes missing", ErrNodesRequired)

	assert.Equal(t, "upload: nodes missing", err.Error())
	assert.ErrorIs(t, err, ErrNodesRequired)

	err = &ServiceError{Op: "upload", Err: ErrEmptyOwnerID}
	assert.Equal(t, "upload: owner ID cannot be empty", err.Error())
}
