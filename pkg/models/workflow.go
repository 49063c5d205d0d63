package models

import "time"

// WorkflowStatus is the lifecycle state of a workflow. Apart from the
// transient StatusUploaded/StatusAnalyzed and the terminal StatusError it is
// always derived with DeriveStatus.
type WorkflowStatus string

const (
	StatusUploaded           WorkflowStatus = "uploaded"
	StatusAnalyzed           WorkflowStatus = "analyzed"
	StatusCredentialsPending WorkflowStatus = "credentials_pending"
	StatusReadyToDeploy      WorkflowStatus = "ready_to_deploy"
	StatusDeployed           WorkflowStatus = "deployed"
	StatusActive             WorkflowStatus = "active"
	StatusError              WorkflowStatus = "error"
)

// Workflow is the aggregate root for an uploaded workflow and its deployment state.
type Workflow struct {
	ID                     string                  `json:"id"`
	OwnerID                string                  `json:"owner_id"`
	Name                   string                  `json:"name"`
	RawGraph               WorkflowGraph           `json:"raw_graph"`
	Status                 WorkflowStatus          `json:"status"`
	IsActive               bool                    `json:"is_active"`
	RemoteWorkflowID       string                  `json:"remote_workflow_id,omitempty"`
	CredentialRequirements []CredentialRequirement `json:"credential_requirements"`
	Triggers               []TriggerDescriptor     `json:"triggers"`
	History                []DeploymentRecord      `json:"history"`
	Summary                *Summary                `json:"summary,omitempty"`
	LastDeployedAt         *time.Time              `json:"last_deployed_at,omitempty"`
	LastActivatedAt        *time.Time              `json:"last_activated_at,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

// IsDeployed reports whether the remote server has assigned a workflow id.
func (w *Workflow) IsDeployed() bool {
	return w.RemoteWorkflowID != ""
}

// AppendHistory adds a record to the audit trail. History is never rewritten.
func (w *Workflow) AppendHistory(record DeploymentRecord) {
	w.History = append(w.History, record)
}

// RefreshStatus recomputes Status from requirements and deployment state.
func (w *Workflow) RefreshStatus() {
	w.Status = DeriveStatus(w.CredentialRequirements, w.RemoteWorkflowID, w.IsActive)
}

// LastRecord returns the most recent history entry, if any.
func (w *Workflow) LastRecord() (DeploymentRecord, bool) {
	if len(w.History) == 0 {
		return DeploymentRecord{}, false
	}

	return w.History[len(w.History)-1], true
}
