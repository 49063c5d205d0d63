package file

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkflow(id, owner string, createdAt time.Time) *models.Workflow {
	return &models.Workflow{
		ID:      id,
		OwnerID: owner,
		Name:    "Order intake",
		RawGraph: models.WorkflowGraph{
			Name: "Order intake",
			Nodes: []models.Node{
				{ID: "1", Name: "Webhook", Type: "n8n-nodes-base.webhook"},
				{
					ID:   "2",
					Name: "Slack",
					Type: "n8n-nodes-base.slack",
					Credentials: map[string]models.CredentialReference{
						"slackApi": {Name: "Team Slack"},
					},
				},
			},
			Connections: map[string]any{},
		},
		Status: models.StatusCredentialsPending,
		CredentialRequirements: []models.CredentialRequirement{
			{NodeID: "2", NodeName: "Slack", CredentialType: "slackApi", CredentialName: "Team Slack"},
		},
		History:   []models.DeploymentRecord{},
		CreatedAt: createdAt,
	}
}

func TestNewPersistence(t *testing.T) {
	fp := NewPersistence("/tmp/test").(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)

	fp = NewPersistence("file:///tmp/test").(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	assert.NoError(t, NewPersistence(t.TempDir()).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(filepath.Join(t.TempDir(), "missing")).HealthCheck(t.Context()))
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	testDir := t.TempDir()
	repo := NewPersistence(testDir).WorkflowRepository()

	workflow := testWorkflow("wf-1", "owner-1", time.Time{})

	require.NoError(t, repo.Save(t.Context(), workflow))
	assert.FileExists(t, filepath.Join(testDir, "workflows", "wf-1.json"))
	assert.False(t, workflow.CreatedAt.IsZero())
	assert.False(t, workflow.UpdatedAt.IsZero())

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "owner-1", loaded.OwnerID)
	assert.Equal(t, models.StatusCredentialsPending, loaded.Status)
	require.Len(t, loaded.RawGraph.Nodes, 2)
	assert.Equal(t, "Team Slack", loaded.RawGraph.Nodes[1].Credentials["slackApi"].Name)
	assert.Equal(t, workflow.CredentialRequirements, loaded.CredentialRequirements)
}

func TestWorkflowRepository_GetMissing(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	workflow, err := repo.GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestWorkflowRepository_RejectsPathTraversal(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	_, err := repo.GetByID(t.Context(), "../etc/passwd")
	require.ErrorIs(t, err, persistence.ErrInvalidKey)

	err = repo.Save(t.Context(), testWorkflow("a/b", "owner", time.Time{}))
	require.ErrorIs(t, err, persistence.ErrInvalidKey)
}

func TestWorkflowRepository_ListByOwner(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(t.Context(), testWorkflow("old", "alice", base)))
	require.NoError(t, repo.Save(t.Context(), testWorkflow("new", "alice", base.Add(time.Hour))))
	require.NoError(t, repo.Save(t.Context(), testWorkflow("other", "bob", base)))

	workflows, err := repo.ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "new", workflows[0].ID)
	assert.Equal(t, "old", workflows[1].ID)

	all, err := repo.ListByOwner(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWorkflowRepository_ListEmpty(t *testing.T) {
	workflows, err := NewWorkflowRepository(t.TempDir()).ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflowRepository_Delete(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	require.NoError(t, repo.Save(t.Context(), testWorkflow("wf-1", "owner", time.Time{})))
	require.NoError(t, repo.Delete(t.Context(), "wf-1"))

	workflow, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Nil(t, workflow)

	assert.NoError(t, repo.Delete(t.Context(), "wf-1"))
}

func TestAccountRepository(t *testing.T) {
	repo := NewPersistence(t.TempDir()).AccountRepository()

	account, err := repo.GetByOwner(t.Context(), "alice")
	require.NoError(t, err)
	assert.Nil(t, account)

	require.NoError(t, repo.Save(t.Context(), &models.RemoteAccount{
		OwnerID: "alice",
		BaseURL: "https://n8n.example.com",
		APIKey:  "secret",
	}))

	account, err = repo.GetByOwner(t.Context(), "alice")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "secret", account.APIKey)
	assert.True(t, account.IsConfigured())
	assert.False(t, account.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(t.Context(), "alice"))

	account, err = repo.GetByOwner(t.Context(), "alice")
	require.NoError(t, err)
	assert.Nil(t, account)
}
