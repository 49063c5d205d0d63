// Package events defines the lifecycle events published for every deployment history entry.
package events

import (
	"time"

	"github.com/dukex/flowgate/pkg/models"
)

type EventType string

const Topic = "flowgate.workflow.lifecycle"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowUploadedEvent    EventType = "workflow.uploaded"
	WorkflowDeployedEvent    EventType = "workflow.deployed"
	WorkflowUpdatedEvent     EventType = "workflow.updated"
	WorkflowActivatedEvent   EventType = "workflow.activated"
	WorkflowDeactivatedEvent EventType = "workflow.deactivated"
	WorkflowDeletedEvent     EventType = "workflow.deleted"
)

// TypeForAction maps a history action to its event type.
func TypeForAction(action models.DeploymentAction) EventType {
	return EventType("workflow." + string(action))
}

// AllTypes lists every lifecycle event type.
func AllTypes() []EventType {
	return []EventType{
		WorkflowUploadedEvent,
		WorkflowDeployedEvent,
		WorkflowUpdatedEvent,
		WorkflowActivatedEvent,
		WorkflowDeactivatedEvent,
		WorkflowDeletedEvent,
	}
}

// WorkflowLifecycle carries one history record together with the workflow
// state right after it was appended.
type WorkflowLifecycle struct {
	ID               string                  `json:"id"`
	Type             EventType               `json:"type"`
	Timestamp        time.Time               `json:"timestamp"`
	WorkflowID       string                  `json:"workflow_id"`
	OwnerID          string                  `json:"owner_id"`
	RemoteWorkflowID string                  `json:"remote_workflow_id,omitempty"`
	Status           models.WorkflowStatus   `json:"status"`
	Record           models.DeploymentRecord `json:"record"`
}

func (e WorkflowLifecycle) GetType() EventType {
	return e.Type
}

// NewWorkflowLifecycle builds the event for record appended to workflow.
func NewWorkflowLifecycle(id string, workflow *models.Workflow, record models.DeploymentRecord) WorkflowLifecycle {
	return WorkflowLifecycle{
		ID:               id,
		Type:             TypeForAction(record.Action),
		Timestamp:        record.Timestamp,
		WorkflowID:       workflow.ID,
		OwnerID:          workflow.OwnerID,
		RemoteWorkflowID: workflow.RemoteWorkflowID,
		Status:           workflow.Status,
		Record:           record,
	}
}
