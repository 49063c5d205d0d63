// Package models defines the domain types for workflow analysis and deployment.
package models

import (
	"encoding/json"
	"strings"
)

// CredentialReference points a node at a stored credential on the remote server.
type CredentialReference struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Node is a single typed step of an uploaded workflow graph.
//
// Fields the remote server understands but this system does not interpret are
// kept verbatim in extra and written back on marshal.
type Node struct {
	ID          string                         `json:"id"`
	Name        string                         `json:"name"`
	Type        string                         `json:"type"`
	TypeVersion float64                        `json:"typeVersion,omitempty"`
	Position    []float64                      `json:"position,omitempty"`
	Parameters  map[string]any                 `json:"parameters,omitempty"`
	WebhookID   *string                        `json:"webhookId,omitempty"`
	Credentials map[string]CredentialReference `json:"credentials,omitempty"`
	Disabled    bool                           `json:"disabled,omitempty"`

	extra map[string]json.RawMessage
}

type nodeAlias Node

var knownNodeFields = map[string]struct{}{
	"id": {}, "name": {}, "type": {}, "typeVersion": {}, "position": {},
	"parameters": {}, "webhookId": {}, "credentials": {}, "disabled": {},
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var alias nodeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key := range knownNodeFields {
		delete(raw, key)
	}

	*n = Node(alias)
	if len(raw) > 0 {
		n.extra = raw
	}

	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(nodeAlias(n))
	if err != nil {
		return nil, err
	}

	if len(n.extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(n.extra)+len(knownNodeFields))
	for key, value := range n.extra {
		merged[key] = value
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}

	for key, value := range fields {
		merged[key] = value
	}

	return json.Marshal(merged)
}

// Parameter returns a string parameter, or "" when absent or not a string.
func (n *Node) Parameter(key string) string {
	if n.Parameters == nil {
		return ""
	}

	value, _ := n.Parameters[key].(string)

	return value
}

// Key identifies the node within its graph: its id, or its name for exports
// that predate node ids.
func (n *Node) Key() string {
	if n.ID != "" {
		return n.ID
	}

	return n.Name
}

// HasWebhookID reports whether the node carries a non-empty webhook id.
func (n *Node) HasWebhookID() bool {
	return n.WebhookID != nil && strings.TrimSpace(*n.WebhookID) != ""
}

// Clone returns a deep enough copy for payload building: maps are copied,
// parameter values are shared.
func (n Node) Clone() Node {
	clone := n

	if n.Parameters != nil {
		clone.Parameters = make(map[string]any, len(n.Parameters))
		for k, v := range n.Parameters {
			clone.Parameters[k] = v
		}
	}

	if n.Credentials != nil {
		clone.Credentials = make(map[string]CredentialReference, len(n.Credentials))
		for k, v := range n.Credentials {
			clone.Credentials[k] = v
		}
	}

	if n.Position != nil {
		clone.Position = append([]float64(nil), n.Position...)
	}

	if n.extra != nil {
		clone.extra = make(map[string]json.RawMessage, len(n.extra))
		for k, v := range n.extra {
			clone.extra[k] = v
		}
	}

	return clone
}
