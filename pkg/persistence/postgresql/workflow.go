package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowgate/pkg/models"
)

// WorkflowRepository handles workflow-related database operations. The graph
// and the analysis results are stored as JSONB documents next to the columns
// used for filtering.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const selectWorkflow = `
	SELECT
		id
	  , owner_id
	  , name
	  , status
	  , is_active
	  , remote_workflow_id
	  , raw_graph
	  , credential_requirements
	  , triggers
	  , history
	  , summary
	  , last_deployed_at
	  , last_activated_at
	  , created_at
	  , updated_at
	FROM workflows
`

type scanner interface {
	Scan(dest ...any) error
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, selectWorkflow+" WHERE id = $1", id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx,
		selectWorkflow+" WHERE ($1 = '' OR owner_id = $1) ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// Save upserts the workflow, filling in missing timestamps.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	if workflow.UpdatedAt.IsZero() {
		workflow.UpdatedAt = now
	}

	rawGraph, err := json.Marshal(workflow.RawGraph)
	if err != nil {
		return fmt.Errorf("failed to marshal raw graph: %w", err)
	}

	requirements, err := marshalList(workflow.CredentialRequirements)
	if err != nil {
		return fmt.Errorf("failed to marshal credential requirements: %w", err)
	}

	triggers, err := marshalList(workflow.Triggers)
	if err != nil {
		return fmt.Errorf("failed to marshal triggers: %w", err)
	}

	history, err := marshalList(workflow.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	var summary []byte
	if workflow.Summary != nil {
		summary, err = json.Marshal(workflow.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
	}

	query := `
		INSERT INTO workflows (id, owner_id, name, status, is_active, remote_workflow_id,
			raw_graph, credential_requirements, triggers, history, summary,
			last_deployed_at, last_activated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			is_active = EXCLUDED.is_active,
			remote_workflow_id = EXCLUDED.remote_workflow_id,
			raw_graph = EXCLUDED.raw_graph,
			credential_requirements = EXCLUDED.credential_requirements,
			triggers = EXCLUDED.triggers,
			history = EXCLUDED.history,
			summary = EXCLUDED.summary,
			last_deployed_at = EXCLUDED.last_deployed_at,
			last_activated_at = EXCLUDED.last_activated_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.OwnerID,
		workflow.Name,
		workflow.Status,
		workflow.IsActive,
		nullString(workflow.RemoteWorkflowID),
		rawGraph,
		requirements,
		triggers,
		history,
		summary,
		workflow.LastDeployedAt,
		workflow.LastActivatedAt,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// Delete removes the workflow row. Deleting a missing workflow is not an error.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow                                  models.Workflow
		remoteWorkflowID                          sql.NullString
		rawGraph, requirements, triggers, history []byte
		summary                                   []byte
		lastDeployedAt, lastActivatedAt           sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.OwnerID,
		&workflow.Name,
		&workflow.Status,
		&workflow.IsActive,
		&remoteWorkflowID,
		&rawGraph,
		&requirements,
		&triggers,
		&history,
		&summary,
		&lastDeployedAt,
		&lastActivatedAt,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.RemoteWorkflowID = remoteWorkflowID.String

	if err := json.Unmarshal(rawGraph, &workflow.RawGraph); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw graph: %w", err)
	}

	if err := json.Unmarshal(requirements, &workflow.CredentialRequirements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential requirements: %w", err)
	}

	if err := json.Unmarshal(triggers, &workflow.Triggers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal triggers: %w", err)
	}

	if err := json.Unmarshal(history, &workflow.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	if len(summary) > 0 {
		workflow.Summary = &models.Summary{}
		if err := json.Unmarshal(summary, workflow.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
	}

	if lastDeployedAt.Valid {
		workflow.LastDeployedAt = &lastDeployedAt.Time
	}

	if lastActivatedAt.Valid {
		workflow.LastActivatedAt = &lastActivatedAt.Time
	}

	return &workflow, nil
}

// marshalList encodes nil slices as [] so the NOT NULL columns hold arrays.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}

	return json.Marshal(items)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
