package analysis

import (
	"testing"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://host/", NormalizeBaseURL("http://host"))
	assert.Equal(t, "http://host/", NormalizeBaseURL("http://host/"))
	assert.Equal(t, "http://host/", NormalizeBaseURL("http://host///"))
	assert.Equal(t, NormalizeBaseURL("http://host/"), NormalizeBaseURL(NormalizeBaseURL("http://host/")))
}

func TestGenerateURLs(t *testing.T) {
	node := &models.Node{ID: "n1", Type: "n8n-nodes-base.webhook"}

	withSlash := GenerateURLs("http://host/", "W1", node, models.TriggerTypeWebhook)
	withoutSlash := GenerateURLs("http://host", "W1", node, models.TriggerTypeWebhook)

	assert.Equal(t, "http://host/webhook/W1", withSlash.Production)
	assert.Equal(t, "http://host/webhook-test/W1", withSlash.Test)
	assert.Nil(t, withSlash.Chat)
	assert.Equal(t, withSlash, withoutSlash)
}

func TestGenerateURLs_PathAndChat(t *testing.T) {
	node := &models.Node{ID: "n1", Parameters: map[string]any{"path": "/support"}}

	urls := GenerateURLs("https://flows.example.com", "W2", node, models.TriggerTypeChat)

	assert.Equal(t, "https://flows.example.com/webhook/W2/support", urls.Production)
	assert.Equal(t, "https://flows.example.com/webhook-test/W2/support", urls.Test)
	require.NotNil(t, urls.Chat)
	assert.Equal(t, "https://flows.example.com/webhook/W2/chat", *urls.Chat)
}

func TestGenerateURLs_EmptyIdentifier(t *testing.T) {
	urls := GenerateURLs("http://host", "", &models.Node{}, models.TriggerTypeWebhook)
	assert.Equal(t, models.TriggerURLs{}, urls)
}

func TestDecorateTriggers_RegeneratesFromIdentifier(t *testing.T) {
	graph := models.WorkflowGraph{Nodes: []models.Node{
		{ID: "1", Type: "n8n-nodes-base.webhook", WebhookID: strPtr("local-hook")},
		{ID: "2", Type: "n8n-nodes-base.scheduleTrigger"},
		{ID: "3", Type: "n8n-nodes-base.githubTrigger"},
	}}
	triggers := Analyze(graph).Triggers
	require.Len(t, triggers, 3)

	beforeDeploy := DecorateTriggers("http://host", "", graph, triggers)
	assert.Equal(t, "http://host/webhook/local-hook", beforeDeploy[0].URLs.Production)
	assert.Empty(t, beforeDeploy[1].URLs.Production)
	assert.Empty(t, beforeDeploy[2].URLs.Production, "no identifier yet, no URL")

	afterDeploy := DecorateTriggers("http://host", "R9", graph, beforeDeploy)
	assert.Equal(t, "http://host/webhook/R9", afterDeploy[0].URLs.Production)
	assert.Equal(t, "http://host/webhook-test/R9", afterDeploy[0].URLs.Test)
	assert.Empty(t, afterDeploy[1].URLs.Production)
	assert.Equal(t, "http://host/webhook/R9", afterDeploy[2].URLs.Production)

	// the input slice is untouched
	assert.Equal(t, "http://host/webhook/local-hook", beforeDeploy[0].URLs.Production)
}

func TestTriggerIdentifier(t *testing.T) {
	node := &models.Node{WebhookID: strPtr("hook")}

	assert.Equal(t, "R1", TriggerIdentifier("R1", node))
	assert.Equal(t, "hook", TriggerIdentifier("", node))
	assert.Empty(t, TriggerIdentifier("", &models.Node{}))
	assert.Empty(t, TriggerIdentifier("", nil))
}
