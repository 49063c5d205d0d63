package deployment

import (
	"context"
	"fmt"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
)

// Deploy creates the workflow on the remote server, or updates it when it
// was deployed before.
func (o *Orchestrator) Deploy(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, string(models.DeploymentActionDeployed), o.deploy)
}

func (o *Orchestrator) Activate(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, string(models.DeploymentActionActivated), o.activate)
}

func (o *Orchestrator) Deactivate(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, string(models.DeploymentActionDeactivated), o.deactivate)
}

// AutoActivateIfReady advances a workflow as far as its state allows: a
// workflow ready to deploy is deployed and activated, a deployed one is
// activated. Any other state is a successful no-op.
func (o *Orchestrator) AutoActivateIfReady(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, OperationAutoActivate, o.autoActivateIfReady)
}

// Delete deactivates an active workflow on the remote server, best-effort,
// and then removes it locally.
func (o *Orchestrator) Delete(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, string(models.DeploymentActionDeleted), o.delete)
}

func (o *Orchestrator) deploy(ctx context.Context, workflow *models.Workflow) Result {
	action := models.DeploymentActionDeployed
	if workflow.IsDeployed() {
		action = models.DeploymentActionUpdated
	}

	if workflow.Status == models.StatusError {
		return failed(string(action), workflow, ErrInvalidTransition)
	}

	if !models.AllConfigured(workflow.CredentialRequirements) {
		return failed(string(action), workflow, ErrCredentialsPending)
	}

	account, client, err := o.account(ctx, workflow.OwnerID)
	if err != nil {
		return o.recordFailure(ctx, workflow, action, "deployment not attempted", err)
	}

	payload := BuildPayload(workflow)

	var deployed *remote.Workflow
	if action == models.DeploymentActionUpdated {
		deployed, err = client.UpdateWorkflow(ctx, workflow.RemoteWorkflowID, payload)
	} else {
		deployed, err = client.CreateWorkflow(ctx, payload)
	}

	if err == nil && deployed.ID == "" {
		err = ErrMissingRemoteID
	}

	if err != nil {
		return o.recordFailure(ctx, workflow, action, "remote save of "+payload.Name+" failed", err)
	}

	now := o.now()
	workflow.RemoteWorkflowID = deployed.ID
	workflow.LastDeployedAt = &now

	o.refreshTriggers(workflow, o.deployedGraph(ctx, client, workflow), account)
	workflow.RefreshStatus()

	details := fmt.Sprintf("deployed as %q with remote id %s", payload.Name, deployed.ID)

	err = o.commit(ctx, workflow, o.newRecord(action, details, nil))
	if err != nil {
		return failed(string(action), workflow, err)
	}

	o.logger.InfoContext(ctx, "workflow deployed",
		"workflow_id", workflow.ID,
		"remote_workflow_id", workflow.RemoteWorkflowID,
		"action", action,
	)

	return succeeded(string(action), workflow)
}

// deployedGraph re-reads the workflow from the remote server so triggers
// reflect the node set it actually stored, falling back to the local graph.
func (o *Orchestrator) deployedGraph(ctx context.Context, client remote.Client, workflow *models.Workflow) models.WorkflowGraph {
	stored, err := client.GetWorkflow(ctx, workflow.RemoteWorkflowID)
	if err != nil || len(stored.Nodes) == 0 {
		if err != nil {
			o.logger.WarnContext(ctx, "could not re-read deployed workflow, using local graph",
				"workflow_id", workflow.ID,
				"remote_workflow_id", workflow.RemoteWorkflowID,
				"error", err,
			)
		}

		return workflow.RawGraph
	}

	return models.WorkflowGraph{
		Name:        stored.Name,
		Nodes:       stored.Nodes,
		Connections: stored.Connections,
		Settings:    stored.Settings,
		StaticData:  stored.StaticData,
	}
}

func (o *Orchestrator) activate(ctx context.Context, workflow *models.Workflow) Result {
	return o.setActive(ctx, workflow, true)
}

func (o *Orchestrator) deactivate(ctx context.Context, workflow *models.Workflow) Result {
	return o.setActive(ctx, workflow, false)
}

func (o *Orchestrator) setActive(ctx context.Context, workflow *models.Workflow, active bool) Result {
	action := models.DeploymentActionDeactivated
	if active {
		action = models.DeploymentActionActivated
	}

	if workflow.Status == models.StatusError {
		return failed(string(action), workflow, ErrInvalidTransition)
	}

	if !workflow.IsDeployed() {
		return failed(string(action), workflow, ErrNotDeployed)
	}

	return o.applyActive(ctx, workflow, active)
}

// applyActive performs the remote activation call and records its outcome.
// It does not look at Status, so delete can always stop a running workflow.
func (o *Orchestrator) applyActive(ctx context.Context, workflow *models.Workflow, active bool) Result {
	action := models.DeploymentActionDeactivated
	if active {
		action = models.DeploymentActionActivated
	}

	_, client, err := o.account(ctx, workflow.OwnerID)
	if err != nil {
		return o.recordFailure(ctx, workflow, action, "remote call not attempted", err)
	}

	if active {
		_, err = client.ActivateWorkflow(ctx, workflow.RemoteWorkflowID)
	} else {
		_, err = client.DeactivateWorkflow(ctx, workflow.RemoteWorkflowID)
	}

	if err != nil {
		return o.recordFailure(ctx, workflow, action, "remote workflow "+workflow.RemoteWorkflowID, err)
	}

	workflow.IsActive = active
	if active {
		now := o.now()
		workflow.LastActivatedAt = &now
	}

	workflow.RefreshStatus()

	err = o.commit(ctx, workflow, o.newRecord(action, "remote workflow "+workflow.RemoteWorkflowID, nil))
	if err != nil {
		return failed(string(action), workflow, err)
	}

	return succeeded(string(action), workflow)
}

func (o *Orchestrator) autoActivateIfReady(ctx context.Context, workflow *models.Workflow) Result {
	switch workflow.Status {
	case models.StatusReadyToDeploy:
		deployed := o.deploy(ctx, workflow)
		if !deployed.Success {
			return deployed
		}

		return o.activate(ctx, workflow)
	case models.StatusDeployed:
		return o.activate(ctx, workflow)
	default:
		return succeeded(OperationAutoActivate, workflow)
	}
}

func (o *Orchestrator) delete(ctx context.Context, workflow *models.Workflow) Result {
	action := models.DeploymentActionDeleted

	if workflow.IsActive && workflow.IsDeployed() {
		deactivated := o.applyActive(ctx, workflow, false)
		if !deactivated.Success {
			o.logger.WarnContext(ctx, "deactivation before delete failed, deleting anyway",
				"workflow_id", workflow.ID,
				"remote_workflow_id", workflow.RemoteWorkflowID,
				"error", deactivated.Error,
			)
		}
	}

	record := o.newRecord(action, "workflow removed", nil)
	workflow.AppendHistory(record)

	err := o.workflows.Delete(ctx, workflow.ID)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to delete workflow", "workflow_id", workflow.ID, "error", err)

		return failed(string(action), workflow, err)
	}

	o.metrics.ObserveTransition(string(action), true)
	o.publish(ctx, workflow, record)

	return succeeded(string(action), workflow)
}
