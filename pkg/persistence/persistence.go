// Package persistence provides the storage abstraction for workflows and remote accounts.
package persistence

import (
	"context"

	"github.com/dukex/flowgate/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	AccountRepository() AccountRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow aggregates. GetByID returns nil, nil
// when the workflow does not exist.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// ListByOwner returns workflows newest first. An empty owner lists all.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}

// AccountRepository stores one remote account per owner. GetByOwner returns
// nil, nil when the owner has not connected an account.
type AccountRepository interface {
	Save(ctx context.Context, account *models.RemoteAccount) error
	GetByOwner(ctx context.Context, ownerID string) (*models.RemoteAccount, error)
	Delete(ctx context.Context, ownerID string) error
}
