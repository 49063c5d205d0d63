package models

// CredentialRequirement is a node's declared need for a typed credential.
// Only IsConfigured and RemoteCredentialID change after analysis.
type CredentialRequirement struct {
	NodeID             string `json:"node_id"`
	NodeName           string `json:"node_name"`
	CredentialType     string `json:"credential_type"`
	CredentialName     string `json:"credential_name"`
	IsConfigured       bool   `json:"is_configured"`
	RemoteCredentialID string `json:"remote_credential_id,omitempty"`
}

// AllConfigured reports whether every requirement is configured. An empty
// list is trivially configured.
func AllConfigured(requirements []CredentialRequirement) bool {
	for _, requirement := range requirements {
		if !requirement.IsConfigured {
			return false
		}
	}

	return true
}

// MissingCredentials returns the requirements that are not configured.
func MissingCredentials(requirements []CredentialRequirement) []CredentialRequirement {
	missing := make([]CredentialRequirement, 0)

	for _, requirement := range requirements {
		if !requirement.IsConfigured {
			missing = append(missing, requirement)
		}
	}

	return missing
}
