// Package remote is a client for the REST API of the remote workflow-execution server.
package remote

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/flowgate/pkg/models"
)

// Credential is a credential stored on the remote server. Secret data is never returned.
type Credential struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateCredentialRequest is the body of POST /api/v1/credentials.
type CreateCredentialRequest struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// WorkflowPayload holds only the fields the remote server accepts on create
// and update. Read-only fields such as active, id or meta must not be sent.
type WorkflowPayload struct {
	Name        string         `json:"name"`
	Nodes       []models.Node  `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Settings    map[string]any `json:"settings"`
	StaticData  any            `json:"staticData"`
}

// Workflow is the remote representation of a workflow. Unknown fields are ignored.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []models.Node  `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Settings    map[string]any `json:"settings"`
	StaticData  any            `json:"staticData"`
}

type credentialList struct {
	Data       []Credential `json:"data"`
	NextCursor *string      `json:"nextCursor"`
}

// flexibleID accepts identifiers sent as JSON strings or numbers. Older
// remote server versions use numeric ids.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""

		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = flexibleID(text)

		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("id is neither a string nor a number: %s", data)
	}

	*id = flexibleID(number.String())

	return nil
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	type plain Credential

	var decoded struct {
		plain
		ID flexibleID `json:"id"`
	}

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	*c = Credential(decoded.plain)
	c.ID = string(decoded.ID)

	return nil
}

func (w *Workflow) UnmarshalJSON(data []byte) error {
	type plain Workflow

	var decoded struct {
		plain
		ID flexibleID `json:"id"`
	}

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	*w = Workflow(decoded.plain)
	w.ID = string(decoded.ID)

	return nil
}
