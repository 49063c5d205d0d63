// Package deployment drives workflows through their deployment lifecycle on
// the remote server and keeps the append-only history of every attempt.
package deployment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowgate/pkg/analysis"
	"github.com/dukex/flowgate/pkg/eventbus"
	"github.com/dukex/flowgate/pkg/events"
	"github.com/dukex/flowgate/pkg/locker"
	"github.com/dukex/flowgate/pkg/metrics"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/otelhelper"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Summarizer produces the optional human-readable summary of a graph. It must
// not fail.
type Summarizer interface {
	Summarize(ctx context.Context, graph models.WorkflowGraph, triggers []models.TriggerDescriptor) models.Summary
}

type Options struct {
	Workflows persistence.WorkflowRepository
	Accounts  persistence.AccountRepository
	Remote    remote.Factory
	Locker    locker.Locker
	// Events is optional; lifecycle events are skipped when nil.
	Events eventbus.EventPublisher
	// Summarizer is optional; uploads carry no summary when nil.
	Summarizer Summarizer
	// PublicBaseURL overrides the account base URL in generated trigger URLs.
	PublicBaseURL string
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Now           func() time.Time
}

// Orchestrator owns the workflow state machine. Every mutating operation holds
// the per-workflow lock for its whole duration, so remote deploy and
// activation calls never overlap for one workflow.
type Orchestrator struct {
	workflows     persistence.WorkflowRepository
	accounts      persistence.AccountRepository
	remote        remote.Factory
	locker        locker.Locker
	events        eventbus.EventPublisher
	summarizer    Summarizer
	publicBaseURL string
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Locker == nil {
		opts.Locker = locker.NewMemory()
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = otelhelper.Tracer("flowgate/deployment")
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Orchestrator{
		workflows:     opts.Workflows,
		accounts:      opts.Accounts,
		remote:        opts.Remote,
		locker:        opts.Locker,
		events:        opts.Events,
		summarizer:    opts.Summarizer,
		publicBaseURL: opts.PublicBaseURL,
		metrics:       opts.Metrics,
		logger:        opts.Logger.With("module", "deployment"),
		tracer:        opts.Tracer,
		now:           opts.Now,
	}
}

type transition func(ctx context.Context, workflow *models.Workflow) Result

// withWorkflow locks, loads and hands the workflow to fn.
func (o *Orchestrator) withWorkflow(ctx context.Context, workflowID, action string, fn transition) Result {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "deployment."+action,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ActionKey, action),
	)
	defer span.End()

	unlock, err := o.locker.Lock(ctx, "workflow:"+workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return failed(action, nil, fmt.Errorf("failed to lock workflow %s: %w", workflowID, err))
	}
	defer unlock()

	workflow, err := o.workflows.GetByID(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return failed(action, nil, err)
	}

	if workflow == nil {
		return failed(action, nil, persistence.NewWorkflowError(action, workflowID, persistence.ErrWorkflowNotFound))
	}

	result := fn(ctx, workflow)
	if !result.Success && result.Err != nil {
		otelhelper.SetError(span, result.Err)
	}

	return result
}

// account resolves the owner's remote account and a client for it.
// remote.ErrNotConfigured is returned when the owner has none.
func (o *Orchestrator) account(ctx context.Context, ownerID string) (*models.RemoteAccount, remote.Client, error) {
	account, err := o.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if !account.IsConfigured() || o.remote == nil {
		return account, nil, remote.ErrNotConfigured
	}

	client, err := o.remote(account)
	if err != nil {
		return account, nil, err
	}

	return account, client, nil
}

func (o *Orchestrator) baseURL(account *models.RemoteAccount) string {
	if o.publicBaseURL != "" {
		return o.publicBaseURL
	}

	if account != nil {
		return account.BaseURL
	}

	return ""
}

// refreshTriggers reclassifies graph and rebuilds every trigger URL for the
// workflow's current identifier.
func (o *Orchestrator) refreshTriggers(workflow *models.Workflow, graph models.WorkflowGraph, account *models.RemoteAccount) {
	triggers := analysis.AnalyzeAt(graph, o.now()).Triggers
	workflow.Triggers = analysis.DecorateTriggers(o.baseURL(account), workflow.RemoteWorkflowID, graph, triggers)
}

func (o *Orchestrator) newRecord(action models.DeploymentAction, details string, err error) models.DeploymentRecord {
	record := models.DeploymentRecord{
		Action:    action,
		Timestamp: o.now(),
		Details:   details,
		Success:   err == nil,
	}

	if err != nil {
		record.ErrorMessage = remote.Message(err)
	}

	return record
}

// commit appends records, persists the workflow and then publishes one
// lifecycle event per record.
func (o *Orchestrator) commit(ctx context.Context, workflow *models.Workflow, records ...models.DeploymentRecord) error {
	for _, record := range records {
		workflow.AppendHistory(record)
	}

	workflow.UpdatedAt = o.now()

	err := o.workflows.Save(ctx, workflow)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to save workflow", "workflow_id", workflow.ID, "error", err)

		return err
	}

	for _, record := range records {
		o.metrics.ObserveTransition(string(record.Action), record.Success)
		o.publish(ctx, workflow, record)
	}

	return nil
}

func (o *Orchestrator) publish(ctx context.Context, workflow *models.Workflow, record models.DeploymentRecord) {
	if o.events == nil {
		return
	}

	event := events.NewWorkflowLifecycle(uuid.NewString(), workflow, record)

	err := o.events.Publish(ctx, workflow.ID, event)
	if err != nil {
		o.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"workflow_id", workflow.ID,
			"action", record.Action,
			"error", err,
		)
	}
}

// recordFailure appends a failed record for action and returns the failed Result.
func (o *Orchestrator) recordFailure(
	ctx context.Context,
	workflow *models.Workflow,
	action models.DeploymentAction,
	details string,
	err error,
) Result {
	o.logger.ErrorContext(ctx, "lifecycle transition failed",
		"workflow_id", workflow.ID,
		"remote_workflow_id", workflow.RemoteWorkflowID,
		"action", action,
		"error", err,
	)

	saveErr := o.commit(ctx, workflow, o.newRecord(action, details, err))
	if saveErr != nil {
		o.logger.ErrorContext(ctx, "failed to persist failure record", "workflow_id", workflow.ID, "error", saveErr)
	}

	return failed(string(action), workflow, err)
}
