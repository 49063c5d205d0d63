package models

import "time"

// DeploymentAction names a lifecycle transition recorded in history.
type DeploymentAction string

const (
	DeploymentActionUploaded    DeploymentAction = "uploaded"
	DeploymentActionDeployed    DeploymentAction = "deployed"
	DeploymentActionActivated   DeploymentAction = "activated"
	DeploymentActionDeactivated DeploymentAction = "deactivated"
	DeploymentActionUpdated     DeploymentAction = "updated"
	DeploymentActionDeleted     DeploymentAction = "deleted"
)

// DeploymentRecord is one append-only audit entry.
type DeploymentRecord struct {
	Action       DeploymentAction `json:"action"`
	Timestamp    time.Time        `json:"timestamp"`
	Details      string           `json:"details"`
	Success      bool             `json:"success"`
	ErrorMessage string           `json:"error_message,omitempty"`
}
