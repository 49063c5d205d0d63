package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowgate/pkg/analysis"
	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Workflow struct {
	persistence  persistence.Persistence
	orchestrator *deployment.Orchestrator
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, orchestrator *deployment.Orchestrator, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence:  persistence,
		orchestrator: orchestrator,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger.With("module", "workflow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ParseGraph decodes an uploaded document into a graph. The document must
// have a non-empty name and at least one node.
func ParseGraph(document []byte) (models.WorkflowGraph, error) {
	var graph models.WorkflowGraph

	err := json.Unmarshal(document, &graph)
	if err != nil {
		return models.WorkflowGraph{}, NewValidationError("parse_graph", "INVALID_GRAPH",
			"document is not a workflow graph: "+err.Error(), ErrInvalidGraph)
	}

	if strings.TrimSpace(graph.Name) == "" {
		return models.WorkflowGraph{}, ErrWorkflowNameRequired
	}

	if len(graph.Nodes) == 0 {
		return models.WorkflowGraph{}, ErrNodesRequired
	}

	err = analysis.ValidateGraphDocument(document)
	if err != nil {
		return models.WorkflowGraph{}, NewValidationError("parse_graph", "INVALID_GRAPH", err.Error(), err)
	}

	return graph, nil
}

// Upload validates document, creates a workflow for ownerID and hands it to
// the orchestrator for analysis.
func (w *Workflow) Upload(ctx context.Context, ownerID string, document []byte) (deployment.Result, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return deployment.Result{}, ErrEmptyOwnerID
	}

	graph, err := ParseGraph(document)
	if err != nil {
		return deployment.Result{}, err
	}

	workflow := &models.Workflow{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     graph.Name,
		RawGraph: graph,
		History:  make([]models.DeploymentRecord, 0),
	}

	result := w.orchestrator.Upload(ctx, workflow)
	if !result.Success {
		return result, fmt.Errorf("failed to upload workflow: %w", result.Err)
	}

	w.logger.InfoContext(ctx, "workflow uploaded",
		"workflow_id", workflow.ID,
		"owner_id", ownerID,
		"status", workflow.Status,
	)

	return result, nil
}

// UpdateGraph replaces the graph of an existing workflow. Only documents
// that do not decode are rejected here; a decodable graph that fails
// validation moves the workflow to the error status.
func (w *Workflow) UpdateGraph(ctx context.Context, workflowID string, document []byte) (deployment.Result, error) {
	var graph models.WorkflowGraph

	err := json.Unmarshal(document, &graph)
	if err != nil {
		return deployment.Result{}, NewValidationError("update_graph", "INVALID_GRAPH",
			"document is not a workflow graph: "+err.Error(), ErrInvalidGraph)
	}

	return w.orchestrator.UpdateGraph(ctx, workflowID, graph), nil
}

// List returns the owner's workflows, newest first. An empty owner lists all.
func (w *Workflow) List(ctx context.Context, ownerID string) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().ListByOwner(ctx, strings.TrimSpace(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("fetch", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// CreateCredential validates req before creating the credential remotely.
func (w *Workflow) CreateCredential(ctx context.Context, workflowID string, req deployment.CredentialRequest) (deployment.Result, error) {
	err := w.validate.Struct(req)
	if err != nil {
		return deployment.Result{}, err
	}

	return w.orchestrator.CreateCredential(ctx, workflowID, req), nil
}

func (w *Workflow) Deploy(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Deploy(ctx, workflowID)
}

func (w *Workflow) Activate(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Activate(ctx, workflowID)
}

func (w *Workflow) Deactivate(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Deactivate(ctx, workflowID)
}

func (w *Workflow) AutoActivate(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.AutoActivateIfReady(ctx, workflowID)
}

func (w *Workflow) Reconcile(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Reconcile(ctx, workflowID)
}

func (w *Workflow) Analyze(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Analyze(ctx, workflowID)
}

func (w *Workflow) Delete(ctx context.Context, workflowID string) deployment.Result {
	return w.orchestrator.Delete(ctx, workflowID)
}
