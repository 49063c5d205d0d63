package models

// DeriveStatus computes the workflow status. Deployment state is sticky:
// once a remote id exists the status is deployed or active regardless of
// credential state.
func DeriveStatus(requirements []CredentialRequirement, remoteWorkflowID string, isActive bool) WorkflowStatus {
	if remoteWorkflowID != "" {
		if isActive {
			return StatusActive
		}

		return StatusDeployed
	}

	if AllConfigured(requirements) {
		return StatusReadyToDeploy
	}

	return StatusCredentialsPending
}
