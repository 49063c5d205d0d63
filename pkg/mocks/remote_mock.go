package mocks

import (
	"context"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/stretchr/testify/mock"
)

// MockRemoteClient is a mock implementation of remote.Client.
type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) ListCredentials(ctx context.Context) ([]remote.Credential, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]remote.Credential), args.Error(1)
}

func (m *MockRemoteClient) CreateCredential(ctx context.Context, req remote.CreateCredentialRequest) (*remote.Credential, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*remote.Credential), args.Error(1)
}

func (m *MockRemoteClient) CreateWorkflow(ctx context.Context, payload remote.WorkflowPayload) (*remote.Workflow, error) {
	args := m.Called(ctx, payload)

	return workflowResult(args)
}

func (m *MockRemoteClient) UpdateWorkflow(ctx context.Context, id string, payload remote.WorkflowPayload) (*remote.Workflow, error) {
	args := m.Called(ctx, id, payload)

	return workflowResult(args)
}

func (m *MockRemoteClient) GetWorkflow(ctx context.Context, id string) (*remote.Workflow, error) {
	args := m.Called(ctx, id)

	return workflowResult(args)
}

func (m *MockRemoteClient) ActivateWorkflow(ctx context.Context, id string) (*remote.Workflow, error) {
	args := m.Called(ctx, id)

	return workflowResult(args)
}

func (m *MockRemoteClient) DeactivateWorkflow(ctx context.Context, id string) (*remote.Workflow, error) {
	args := m.Called(ctx, id)

	return workflowResult(args)
}

func workflowResult(args mock.Arguments) (*remote.Workflow, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*remote.Workflow), args.Error(1)
}

// RemoteFactory returns a remote.Factory that always hands out client.
func RemoteFactory(client remote.Client) remote.Factory {
	return func(_ *models.RemoteAccount) (remote.Client, error) {
		return client, nil
	}
}
