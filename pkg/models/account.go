package models

import (
	"strings"
	"time"
)

// RemoteAccount is an owner's connection to a remote workflow-execution server.
type RemoteAccount struct {
	OwnerID   string    `json:"owner_id"   validate:"required"`
	BaseURL   string    `json:"base_url"   validate:"required,url"`
	APIKey    string    `json:"api_key"    validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsConfigured reports whether both the server address and API key are present.
func (a *RemoteAccount) IsConfigured() bool {
	return a != nil && strings.TrimSpace(a.BaseURL) != "" && strings.TrimSpace(a.APIKey) != ""
}
