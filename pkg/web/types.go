package web

import (
	"time"

	"github.com/dukex/flowgate/pkg/models"
)

// ConnectAccountRequest represents the request body for connecting a remote server.
type ConnectAccountRequest struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	APIKey  string `json:"api_key"  validate:"required"`
}

// AccountResponse never carries the API key.
type AccountResponse struct {
	OwnerID   string    `json:"owner_id"`
	BaseURL   string    `json:"base_url"`
	HasAPIKey bool      `json:"has_api_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func TransformAccountResponse(account *models.RemoteAccount) AccountResponse {
	return AccountResponse{
		OwnerID:   account.OwnerID,
		BaseURL:   account.BaseURL,
		HasAPIKey: account.APIKey != "",
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// WorkflowListResponse wraps a list of workflows.
type WorkflowListResponse struct {
	Workflows  []*models.Workflow `json:"workflows"`
	TotalCount int                `json:"total_count"`
}
