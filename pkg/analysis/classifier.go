// Package analysis classifies workflow graphs: it finds trigger nodes, extracts
// credential requirements and builds the public URLs of each trigger.
// Nothing in this package performs I/O or returns errors for odd input.
package analysis

import (
	"slices"
	"strings"
	"time"

	"github.com/dukex/flowgate/pkg/models"
)

// Analysis is the result of classifying a workflow graph.
type Analysis struct {
	Triggers    []models.TriggerDescriptor
	Credentials []models.CredentialRequirement
}

// HasTriggers reports whether at least one trigger node was found.
func (a Analysis) HasTriggers() bool {
	return len(a.Triggers) > 0
}

// Analyze classifies graph using the current time for schedule details.
func Analyze(graph models.WorkflowGraph) Analysis {
	return AnalyzeAt(graph, time.Now().UTC())
}

// AnalyzeAt classifies graph. now is only used to compute the next run of
// schedule triggers. Triggers carry no URLs; see DecorateTriggers.
func AnalyzeAt(graph models.WorkflowGraph, now time.Time) Analysis {
	result := Analysis{
		Triggers:    make([]models.TriggerDescriptor, 0),
		Credentials: ExtractCredentials(graph),
	}

	for i := range graph.Nodes {
		node := &graph.Nodes[i]

		triggerType, ok := ClassifyTrigger(node)
		if !ok {
			continue
		}

		result.Triggers = append(result.Triggers, describeTrigger(node, triggerType, now))
	}

	return result
}

// ExtractCredentials emits one requirement per (node, credential type) in
// node order. Credential types of a single node are sorted by name.
func ExtractCredentials(graph models.WorkflowGraph) []models.CredentialRequirement {
	requirements := make([]models.CredentialRequirement, 0)
	seen := make(map[string]struct{})

	for _, node := range graph.Nodes {
		if len(node.Credentials) == 0 {
			continue
		}

		types := make([]string, 0, len(node.Credentials))
		for credentialType := range node.Credentials {
			types = append(types, credentialType)
		}

		slices.Sort(types)

		for _, credentialType := range types {
			key := node.Key() + "\x00" + credentialType
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			reference := node.Credentials[credentialType]

			name := reference.Name
			if name == "" {
				name = credentialType
			}

			requirements = append(requirements, models.CredentialRequirement{
				NodeID:             node.Key(),
				NodeName:           node.Name,
				CredentialType:     credentialType,
				CredentialName:     name,
				IsConfigured:       false,
				RemoteCredentialID: reference.ID,
			})
		}
	}

	return requirements
}

// ClassifyTrigger decides whether node is a trigger and of which kind.
// Checks run in a fixed order and the first hit wins: chat, webhook,
// schedule, manual, then any other "*trigger" type as a generic webhook.
func ClassifyTrigger(node *models.Node) (models.TriggerType, bool) {
	nodeType := strings.ToLower(strings.TrimSpace(node.Type))
	if nodeType == "" {
		return "", false
	}

	name := strings.ToLower(node.Name)

	switch {
	case isChatTrigger(nodeType, name):
		return models.TriggerTypeChat, true
	case isWebhookTrigger(nodeType) || node.HasWebhookID():
		return models.TriggerTypeWebhook, true
	case isScheduleTrigger(nodeType):
		return models.TriggerTypeSchedule, true
	case strings.Contains(nodeType, "manualtrigger"):
		return models.TriggerTypeManual, true
	case strings.Contains(nodeType, "trigger"):
		return models.TriggerTypeWebhook, true
	default:
		return "", false
	}
}

func isChatTrigger(nodeType, name string) bool {
	if strings.Contains(nodeType, "chattrigger") {
		return true
	}

	triggerLike := strings.Contains(nodeType, "trigger") || strings.Contains(nodeType, "webhook")

	return triggerLike && (strings.Contains(nodeType, "chat") || strings.Contains(name, "chat"))
}

// isWebhookTrigger excludes outbound HTTP request nodes, which also carry "http".
func isWebhookTrigger(nodeType string) bool {
	if strings.Contains(nodeType, "webhook") {
		return true
	}

	return strings.Contains(nodeType, "http") && !strings.Contains(nodeType, "httprequest")
}

func isScheduleTrigger(nodeType string) bool {
	return strings.Contains(nodeType, "schedule") ||
		strings.Contains(nodeType, "cron") ||
		strings.Contains(nodeType, "interval")
}
