package analysis

import (
	"errors"
	"testing"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraphDocument(t *testing.T) {
	tests := []struct {
		name     string
		document string
		valid    bool
		contains string
	}{
		{
			name:     "valid",
			document: `{"name": "Flow", "nodes": [{"id": "1", "type": "n8n-nodes-base.webhook"}], "connections": {}}`,
			valid:    true,
		},
		{
			name:     "missing nodes",
			document: `{"name": "Flow"}`,
			contains: "nodes",
		},
		{
			name:     "empty nodes",
			document: `{"name": "Flow", "nodes": []}`,
			contains: "nodes",
		},
		{
			name:     "missing name",
			document: `{"nodes": [{"id": "1"}]}`,
			contains: "name",
		},
		{
			name:     "blank name",
			document: `{"name": "   ", "nodes": [{"id": "1"}]}`,
			contains: "name",
		},
		{
			name:     "nodes keyed by name",
			document: `{"name": "Flow", "nodes": [{"name": "Start", "type": "n8n-nodes-base.manualTrigger"}]}`,
			valid:    true,
		},
		{
			name:     "node without id or name",
			document: `{"name": "Flow", "nodes": [{"type": "n8n-nodes-base.manualTrigger"}]}`,
			contains: "nodes.0",
		},
		{
			name:     "not json",
			document: `{nodes`,
			contains: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraphDocument([]byte(tt.document))
			if tt.valid {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGraph))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidateGraph(t *testing.T) {
	valid := models.WorkflowGraph{
		Name:  "Flow",
		Nodes: []models.Node{{ID: "1", Name: "Start", Type: "n8n-nodes-base.manualTrigger"}},
	}
	require.NoError(t, ValidateGraph(valid))

	err := ValidateGraph(models.WorkflowGraph{Name: "Flow"})
	require.ErrorIs(t, err, ErrInvalidGraph)

	err = ValidateGraph(models.WorkflowGraph{Name: "  ", Nodes: valid.Nodes})
	require.ErrorIs(t, err, ErrInvalidGraph)
}
