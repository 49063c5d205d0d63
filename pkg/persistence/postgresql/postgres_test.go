//go:build integration
// +build integration

package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		_ = postgresContainer.Terminate(context.Background())
	}

	os.Exit(code)
}

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"remote_accounts", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("flowgate_test"),
			postgres.WithUsername("flowgate"),
			postgres.WithPassword("flowgate"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Close(context.Background()) })

	return p, ctx, databaseURL
}

func TestNewPersistence_RunsMigrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestWorkflowRepository_RoundTrip(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	deployedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	workflow := &models.Workflow{
		ID:      "wf-1",
		OwnerID: "alice",
		Name:    "Order intake",
		RawGraph: models.WorkflowGraph{
			Name:        "Order intake",
			Nodes:       []models.Node{{ID: "1", Name: "Webhook", Type: "n8n-nodes-base.webhook"}},
			Connections: map[string]any{},
		},
		Status:           models.StatusDeployed,
		RemoteWorkflowID: "R1",
		History: []models.DeploymentRecord{
			{Action: models.DeploymentActionDeployed, Timestamp: deployedAt, Success: true},
		},
		Summary:        &models.Summary{Purpose: "Collect orders"},
		LastDeployedAt: &deployedAt,
	}

	require.NoError(t, repo.Save(ctx, workflow))

	loaded, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "R1", loaded.RemoteWorkflowID)
	assert.Equal(t, models.StatusDeployed, loaded.Status)
	assert.Len(t, loaded.History, 1)
	assert.Empty(t, loaded.CredentialRequirements)
	require.NotNil(t, loaded.Summary)
	assert.Equal(t, "Collect orders", loaded.Summary.Purpose)
	require.NotNil(t, loaded.LastDeployedAt)
	assert.True(t, deployedAt.Equal(*loaded.LastDeployedAt))

	workflow.IsActive = true
	workflow.Status = models.StatusActive
	require.NoError(t, repo.Save(ctx, workflow))

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsActive)

	require.NoError(t, repo.Delete(ctx, "wf-1"))

	missing, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountRepository_RoundTrip(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AccountRepository()

	require.NoError(t, repo.Save(ctx, &models.RemoteAccount{OwnerID: "alice", BaseURL: "https://a.example.com", APIKey: "k1"}))
	require.NoError(t, repo.Save(ctx, &models.RemoteAccount{OwnerID: "alice", BaseURL: "https://b.example.com", APIKey: "k2"}))

	account, err := repo.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "https://b.example.com", account.BaseURL)
	assert.Equal(t, "k2", account.APIKey)

	require.NoError(t, repo.Delete(ctx, "alice"))

	account, err = repo.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, account)
}
