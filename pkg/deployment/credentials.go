package deployment

import (
	"context"

	"github.com/dukex/flowgate/pkg/credentials"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
)

// CredentialRequest creates a credential on the remote server for a
// workflow. With NodeID empty every unconfigured requirement of Type is
// satisfied; otherwise only the (NodeID, Type) requirement.
type CredentialRequest struct {
	NodeID string         `json:"node_id"`
	Type   string         `json:"type"   validate:"required"`
	Name   string         `json:"name"   validate:"required"`
	Data   map[string]any `json:"data"   validate:"required"`
	// AutoActivate chains AutoActivateIfReady after the credential is stored.
	AutoActivate bool `json:"auto_activate"`
}

func (o *Orchestrator) CreateCredential(ctx context.Context, workflowID string, req CredentialRequest) Result {
	return o.withWorkflow(ctx, workflowID, OperationCreateCredential, func(ctx context.Context, workflow *models.Workflow) Result {
		return o.createCredential(ctx, workflow, req)
	})
}

func (o *Orchestrator) createCredential(ctx context.Context, workflow *models.Workflow, req CredentialRequest) Result {
	if workflow.Status == models.StatusError {
		return failed(OperationCreateCredential, workflow, ErrInvalidTransition)
	}

	_, client, err := o.account(ctx, workflow.OwnerID)
	if err != nil {
		return failed(OperationCreateCredential, workflow, err)
	}

	created, err := client.CreateCredential(ctx, remote.CreateCredentialRequest{
		Name: req.Name,
		Type: req.Type,
		Data: req.Data,
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to create remote credential",
			"workflow_id", workflow.ID,
			"credential_type", req.Type,
			"error", err,
		)

		return failed(OperationCreateCredential, workflow, err)
	}

	requirements := make([]models.CredentialRequirement, len(workflow.CredentialRequirements))
	copy(requirements, workflow.CredentialRequirements)

	matched := 0

	for i := range requirements {
		requirement := &requirements[i]
		if requirement.CredentialType != req.Type {
			continue
		}

		if req.NodeID != "" && requirement.NodeID != req.NodeID {
			continue
		}

		if req.NodeID == "" && requirement.IsConfigured {
			continue
		}

		requirement.IsConfigured = true
		requirement.RemoteCredentialID = created.ID
		matched++
	}

	if matched == 0 {
		o.logger.WarnContext(ctx, "created credential matches no requirement",
			"workflow_id", workflow.ID,
			"credential_type", req.Type,
			"node_id", req.NodeID,
		)
	}

	workflow.CredentialRequirements = requirements
	workflow.RefreshStatus()

	err = o.commit(ctx, workflow)
	if err != nil {
		return failed(OperationCreateCredential, workflow, err)
	}

	result := succeeded(OperationCreateCredential, workflow)

	if req.AutoActivate {
		chained := o.autoActivateIfReady(ctx, workflow)
		result.Chained = &chained
		result.Workflow = workflow
	}

	return result
}

// Reconcile corrects the configured state of every credential requirement
// against the owner's remote credential store.
func (o *Orchestrator) Reconcile(ctx context.Context, workflowID string) Result {
	return o.withWorkflow(ctx, workflowID, OperationReconcile, o.reconcile)
}

func (o *Orchestrator) reconcile(ctx context.Context, workflow *models.Workflow) Result {
	if workflow.Status == models.StatusError {
		return failed(OperationReconcile, workflow, ErrInvalidTransition)
	}

	_, client, err := o.account(ctx, workflow.OwnerID)
	if err != nil {
		return failed(OperationReconcile, workflow, err)
	}

	workflow.CredentialRequirements = credentials.NewReconciler(client, o.logger).
		Reconcile(ctx, workflow.CredentialRequirements)
	workflow.RefreshStatus()

	err = o.commit(ctx, workflow)
	if err != nil {
		return failed(OperationReconcile, workflow, err)
	}

	return succeeded(OperationReconcile, workflow)
}
