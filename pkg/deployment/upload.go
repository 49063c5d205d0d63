package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/flowgate/pkg/analysis"
	"github.com/dukex/flowgate/pkg/credentials"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
)

// Upload analyzes a new workflow, reconciles its credentials when the owner
// has a remote account and stores it with an uploaded record.
func (o *Orchestrator) Upload(ctx context.Context, workflow *models.Workflow) Result {
	action := string(models.DeploymentActionUploaded)

	workflow.Status = models.StatusUploaded
	workflow.RemoteWorkflowID = ""
	workflow.IsActive = false

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = o.now()
	}

	o.analyze(ctx, workflow, nil)

	if o.summarizer != nil {
		summary := o.summarizer.Summarize(ctx, workflow.RawGraph, workflow.Triggers)
		workflow.Summary = &summary
	}

	details := fmt.Sprintf("%d triggers, %d credential requirements",
		len(workflow.Triggers), len(workflow.CredentialRequirements))

	err := o.commit(ctx, workflow, o.newRecord(models.DeploymentActionUploaded, details, nil))
	if err != nil {
		return failed(action, workflow, err)
	}

	return succeeded(action, workflow)
}

// UpdateGraph replaces the stored graph and analyzes it again. A graph that
// fails validation moves an undeployed workflow to the error status until a
// valid graph is uploaded. A deployed workflow keeps its graph and its
// deployed or active status; only the failed record is added.
func (o *Orchestrator) UpdateGraph(ctx context.Context, workflowID string, graph models.WorkflowGraph) Result {
	action := string(models.DeploymentActionUpdated)

	return o.withWorkflow(ctx, workflowID, action, func(ctx context.Context, workflow *models.Workflow) Result {
		err := analysis.ValidateGraph(graph)
		if err != nil {
			if workflow.IsDeployed() {
				workflow.RefreshStatus()
			} else {
				workflow.Status = models.StatusError
			}

			return o.recordFailure(ctx, workflow, models.DeploymentActionUpdated, "graph rejected", err)
		}

		previous := workflow.CredentialRequirements
		workflow.RawGraph = graph
		workflow.Name = graph.Name

		o.analyze(ctx, workflow, previous)

		details := fmt.Sprintf("graph replaced: %d triggers, %d credential requirements",
			len(workflow.Triggers), len(workflow.CredentialRequirements))

		err = o.commit(ctx, workflow, o.newRecord(models.DeploymentActionUpdated, details, nil))
		if err != nil {
			return failed(action, workflow, err)
		}

		return succeeded(action, workflow)
	})
}

// Analyze classifies the stored graph again and reconciles credentials
// without touching history.
func (o *Orchestrator) Analyze(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, OperationAnalyze, func(ctx context.Context, workflow *models.Workflow) Result {
		if workflow.Status == models.StatusError {
			return failed(OperationAnalyze, workflow, ErrInvalidTransition)
		}

		o.analyze(ctx, workflow, workflow.CredentialRequirements)

		err := o.commit(ctx, workflow)
		if err != nil {
			return failed(OperationAnalyze, workflow, err)
		}

		return succeeded(OperationAnalyze, workflow)
	})
}

// analyze rebuilds triggers and requirements from the raw graph, then
// reconciles when a remote account is available and derives the status.
// Remote ids known from previous requirements, or embedded in the graph, are
// kept only as matching hints; nothing is configured until reconciliation
// confirms it.
func (o *Orchestrator) analyze(
	ctx context.Context,
	workflow *models.Workflow,
	previous []models.CredentialRequirement,
) {
	result := analysis.AnalyzeAt(workflow.RawGraph, o.now())

	account, client, err := o.account(ctx, workflow.OwnerID)
	if err != nil && !errors.Is(err, remote.ErrNotConfigured) {
		o.logger.WarnContext(ctx, "could not resolve remote account", "workflow_id", workflow.ID, "error", err)
	}

	workflow.Triggers = analysis.DecorateTriggers(o.baseURL(account), workflow.RemoteWorkflowID, workflow.RawGraph, result.Triggers)
	workflow.CredentialRequirements = withHints(result.Credentials, previous)
	workflow.Status = models.StatusAnalyzed

	if client != nil {
		workflow.CredentialRequirements = credentials.NewReconciler(client, o.logger).
			Reconcile(ctx, workflow.CredentialRequirements)
	}

	workflow.RefreshStatus()
}

func withHints(requirements, previous []models.CredentialRequirement) []models.CredentialRequirement {
	known := make(map[string]string, len(previous))
	for _, requirement := range previous {
		if requirement.RemoteCredentialID != "" {
			known[requirement.NodeID+"\x00"+requirement.CredentialType] = requirement.RemoteCredentialID
		}
	}

	for i := range requirements {
		if id, ok := known[requirements[i].NodeID+"\x00"+requirements[i].CredentialType]; ok {
			requirements[i].RemoteCredentialID = id
		}

		requirements[i].IsConfigured = false
	}

	return requirements
}
