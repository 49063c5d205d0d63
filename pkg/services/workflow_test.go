package services

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/mocks"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence/file"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const uploadDocument = `{
  "name": "Order intake",
  "nodes": [
    {"id": "n1", "name": "Incoming", "type": "n8n-nodes-base.webhook", "webhookId": "hook-1", "parameters": {"path": "orders"}},
    {"id": "n2", "name": "Notify", "type": "n8n-nodes-base.slack", "credentials": {"slackApi": {"name": "Team Slack"}}}
  ],
  "connections": {}
}`

func newWorkflowService(t *testing.T) (*Workflow, *mocks.MockRemoteClient) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	client := &mocks.MockRemoteClient{}

	require.NoError(t, store.AccountRepository().Save(t.Context(), &models.RemoteAccount{
		OwnerID: "owner-1",
		BaseURL: "https://n8n.example.com",
		APIKey:  "key",
	}))

	orchestrator := deployment.NewOrchestrator(deployment.Options{
		Workflows: store.WorkflowRepository(),
		Accounts:  store.AccountRepository(),
		Remote:    mocks.RemoteFactory(client),
	})

	return NewWorkflow(store, orchestrator, slog.Default()), client
}

func TestParseGraph(t *testing.T) {
	graph, err := ParseGraph([]byte(uploadDocument))
	require.NoError(t, err)
	assert.Equal(t, "Order intake", graph.Name)
	assert.Len(t, graph.Nodes, 2)

	_, err = ParseGraph([]byte(`{"name": "  ", "nodes": [{"id": "a"}]}`))
	require.ErrorIs(t, err, ErrWorkflowNameRequired)

	_, err = ParseGraph([]byte(`{"name": "x", "nodes": []}`))
	require.ErrorIs(t, err, ErrNodesRequired)

	_, err = ParseGraph([]byte(`{"name": "x", "nodes": [{"name": "no id"}]}`))
	require.ErrorIs(t, err, ErrInvalidGraph)

	_, err = ParseGraph([]byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidGraph)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_UploadAndFetch(t *testing.T) {
	service, client := newWorkflowService(t)

	client.On("ListCredentials", mock.Anything).Return([]remote.Credential{}, nil).Once()

	result, err := service.Upload(t.Context(), "owner-1", []byte(uploadDocument))
	require.NoError(t, err)
	require.True(t, result.Success)

	created := result.Workflow
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusCredentialsPending, created.Status)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Order intake", fetched.Name)

	workflows, err := service.List(t.Context(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, workflows, 1)

	workflows, err = service.List(t.Context(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflow_UploadRequiresOwner(t *testing.T) {
	service, _ := newWorkflowService(t)

	_, err := service.Upload(t.Context(), " ", []byte(uploadDocument))

	require.ErrorIs(t, err, ErrEmptyOwnerID)
}

func TestWorkflow_FetchByID_NotFound(t *testing.T) {
	service, _ := newWorkflowService(t)

	workflow, err := service.FetchByID(t.Context(), "non-existent")

	require.Error(t, err)
	assert.Nil(t, workflow)
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflow_CreateCredentialValidatesRequest(t *testing.T) {
	service, client := newWorkflowService(t)

	_, err := service.CreateCredential(t.Context(), "wf-1", deployment.CredentialRequest{Type: "slackApi"})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	client.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
}

func TestWorkflow_UpdateGraphRejectsUndecodableDocument(t *testing.T) {
	service, _ := newWorkflowService(t)

	_, err := service.UpdateGraph(t.Context(), "wf-1", []byte(`[1, 2`))

	require.ErrorIs(t, err, ErrInvalidGraph)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	service, _ := newWorkflowService(t)

	message, healthy := service.HealthCheck(t.Context())

	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer is healthy", message)

	message, healthy = (&Workflow{}).HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Equal(t, "Persistence layer not initialized", message)
}

func TestWorkflow_HealthCheck_Unhealthy(t *testing.T) {
	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	service := NewWorkflow(store, nil, slog.Default())

	message, healthy := service.HealthCheck(t.Context())

	assert.False(t, healthy)
	assert.Equal(t, "Persistence layer is unhealthy: connection refused", message)
}
