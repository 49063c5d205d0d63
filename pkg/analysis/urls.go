package analysis

import (
	"strings"

	"github.com/dukex/flowgate/pkg/models"
)

const (
	productionSegment = "webhook"
	testSegment       = "webhook-test"
	chatSuffix        = "chat"
)

// NormalizeBaseURL returns base with exactly one trailing slash.
func NormalizeBaseURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/"
}

// GenerateURLs derives the production, test and chat endpoints for a trigger
// node exposed under id.
func GenerateURLs(base, id string, node *models.Node, triggerType models.TriggerType) models.TriggerURLs {
	if id == "" {
		return models.TriggerURLs{}
	}

	base = NormalizeBaseURL(base)

	suffix := id
	if path := webhookPath(node); path != "" {
		suffix += "/" + path
	}

	urls := models.TriggerURLs{
		Production: base + productionSegment + "/" + suffix,
		Test:       base + testSegment + "/" + suffix,
	}

	if triggerType == models.TriggerTypeChat {
		chat := base + productionSegment + "/" + id + "/" + chatSuffix
		urls.Chat = &chat
	}

	return urls
}

// TriggerIdentifier picks the id trigger URLs are built from: the remote
// workflow id when deployed, otherwise the node's own webhook id.
func TriggerIdentifier(remoteWorkflowID string, node *models.Node) string {
	if remoteWorkflowID != "" {
		return remoteWorkflowID
	}

	if node != nil && node.HasWebhookID() {
		return *node.WebhookID
	}

	return ""
}

// DecorateTriggers returns a fresh copy of triggers with URLs rebuilt for the
// current identifier. Schedule and manual triggers never get URLs.
func DecorateTriggers(
	base, remoteWorkflowID string,
	graph models.WorkflowGraph,
	triggers []models.TriggerDescriptor,
) []models.TriggerDescriptor {
	decorated := make([]models.TriggerDescriptor, 0, len(triggers))

	for _, trigger := range triggers {
		trigger.URLs = models.TriggerURLs{}

		if trigger.Type == models.TriggerTypeWebhook || trigger.Type == models.TriggerTypeChat {
			node := graph.NodeByKey(trigger.NodeID)
			if node == nil {
				node = &models.Node{ID: trigger.NodeID, WebhookID: trigger.WebhookID}
			}

			id := TriggerIdentifier(remoteWorkflowID, node)
			trigger.URLs = GenerateURLs(base, id, node, trigger.Type)
		}

		decorated = append(decorated, trigger)
	}

	return decorated
}
