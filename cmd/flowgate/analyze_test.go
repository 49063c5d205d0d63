package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatDocument = `{
  "name": "Support bot",
  "nodes": [
    {"id": "c1", "name": "When chat message received", "type": "@n8n/n8n-nodes-langchain.chatTrigger", "webhookId": "chat-1"},
    {"id": "c2", "name": "Model", "type": "@n8n/n8n-nodes-langchain.lmChatOpenAi", "credentials": {"openAiApi": {"id": "7", "name": "OpenAI"}}}
  ],
  "connections": {}
}`

func TestAnalyzeDocument(t *testing.T) {
	report, err := analyzeDocument([]byte(chatDocument), "https://n8n.example.com/", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Support bot", report.Name)
	require.Len(t, report.Triggers, 1)
	assert.Equal(t, models.TriggerTypeChat, report.Triggers[0].Type)
	require.NotNil(t, report.Triggers[0].URLs.Chat)
	assert.Equal(t, "https://n8n.example.com/webhook/chat-1/chat", *report.Triggers[0].URLs.Chat)

	require.Len(t, report.CredentialRequirements, 1)
	assert.False(t, report.CredentialRequirements[0].IsConfigured)
	assert.NotEmpty(t, report.Summary.Purpose)
}

func TestAnalyzeDocument_RemoteID(t *testing.T) {
	report, err := analyzeDocument([]byte(chatDocument), "https://n8n.example.com", "R9", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "https://n8n.example.com/webhook/R9", report.Triggers[0].URLs.Production)
}

func TestAnalyzeDocument_Invalid(t *testing.T) {
	_, err := analyzeDocument([]byte(`{"name": "empty", "nodes": []}`), "", "", time.Now())

	require.ErrorIs(t, err, services.ErrNodesRequired)
}

func TestAnalyzeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(chatDocument), 0o600))

	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out

	err := command.Run(t.Context(), []string{"flowgate", "analyze", "--file", path, "--base-url", "http://localhost:5678"})
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "Support bot", report.Name)
	assert.Equal(t, "http://localhost:5678/webhook/chat-1", report.Triggers[0].URLs.Production)
}
