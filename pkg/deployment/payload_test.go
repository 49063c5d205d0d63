package deployment

import (
	"testing"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisambiguateName(t *testing.T) {
	first := DisambiguateName("Orders", "wf-1")

	assert.Regexp(t, `^Orders \[[0-9a-f]{8}\]$`, first)
	assert.Equal(t, first, DisambiguateName("Orders", "wf-1"), "suffix is stable per seed")
	assert.Equal(t, first, DisambiguateName(first, "other"), "already disambiguated names are kept")
	assert.NotEqual(t, first, DisambiguateName("Orders", "wf-2"))
}

func TestBuildPayload(t *testing.T) {
	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Orders",
		RawGraph: models.WorkflowGraph{
			Name: "Orders",
			Nodes: []models.Node{{
				ID:   "n1",
				Type: "n8n-nodes-base.smtp",
				Credentials: map[string]models.CredentialReference{
					"smtp":  {Name: "Mail"},
					"other": {ID: "keep", Name: "Other"},
				},
			}},
		},
		CredentialRequirements: []models.CredentialRequirement{
			{NodeID: "n1", CredentialType: "smtp", IsConfigured: true, RemoteCredentialID: "9"},
			{NodeID: "n1", CredentialType: "other", IsConfigured: false, RemoteCredentialID: "stale"},
		},
	}

	payload := BuildPayload(workflow)

	require.Len(t, payload.Nodes, 1)
	assert.Equal(t, "9", payload.Nodes[0].Credentials["smtp"].ID)
	assert.Equal(t, "keep", payload.Nodes[0].Credentials["other"].ID)
	assert.NotNil(t, payload.Connections)
	assert.NotNil(t, payload.Settings)
	assert.Empty(t, workflow.RawGraph.Nodes[0].Credentials["smtp"].ID)
}

func TestBuildPayload_NodesKeyedByName(t *testing.T) {
	workflow := &models.Workflow{
		RawGraph: models.WorkflowGraph{
			Name: "Legacy",
			Nodes: []models.Node{{
				Name:        "Mail",
				Type:        "n8n-nodes-base.emailSend",
				Credentials: map[string]models.CredentialReference{"smtp": {Name: "Mail"}},
			}},
		},
		CredentialRequirements: []models.CredentialRequirement{
			{NodeID: "Mail", CredentialType: "smtp", IsConfigured: true, RemoteCredentialID: "9"},
		},
	}

	payload := BuildPayload(workflow)

	require.Len(t, payload.Nodes, 1)
	assert.Equal(t, "9", payload.Nodes[0].Credentials["smtp"].ID)
}
