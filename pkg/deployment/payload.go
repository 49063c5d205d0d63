package deployment

import (
	"regexp"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/google/uuid"
)

var disambiguatedName = regexp.MustCompile(`\s\[[0-9a-f]{8}\]$`)

// DisambiguateName appends " [xxxxxxxx]" derived from seed unless name already
// ends with such a suffix. The same seed always yields the same suffix so
// redeploys keep the remote name stable.
func DisambiguateName(name, seed string) string {
	if disambiguatedName.MatchString(name) {
		return name
	}

	suffix := uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()[:8]

	return name + " [" + suffix + "]"
}

// BuildPayload converts a workflow into the only shape the remote server
// accepts on create and update. Reconciled remote credential ids are written
// into the node credential references; the stored graph is left untouched.
func BuildPayload(workflow *models.Workflow) remote.WorkflowPayload {
	graph := workflow.RawGraph

	credentialIDs := make(map[string]string, len(workflow.CredentialRequirements))
	for _, requirement := range workflow.CredentialRequirements {
		if requirement.IsConfigured && requirement.RemoteCredentialID != "" {
			credentialIDs[requirement.NodeID+"\x00"+requirement.CredentialType] = requirement.RemoteCredentialID
		}
	}

	nodes := make([]models.Node, 0, len(graph.Nodes))

	for _, node := range graph.Nodes {
		clone := node.Clone()

		for credentialType, reference := range clone.Credentials {
			if id, ok := credentialIDs[clone.Key()+"\x00"+credentialType]; ok {
				reference.ID = id
				clone.Credentials[credentialType] = reference
			}
		}

		nodes = append(nodes, clone)
	}

	connections := graph.Connections
	if connections == nil {
		connections = map[string]any{}
	}

	settings := graph.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	name := workflow.Name
	if name == "" {
		name = graph.Name
	}

	return remote.WorkflowPayload{
		Name:        DisambiguateName(name, workflow.ID),
		Nodes:       nodes,
		Connections: connections,
		Settings:    settings,
		StaticData:  graph.StaticData,
	}
}
