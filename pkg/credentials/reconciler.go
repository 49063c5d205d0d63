// Package credentials reconciles locally declared credential requirements
// against the credentials actually stored on the remote server.
package credentials

import (
	"context"
	"log/slog"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
)

// Lister is the part of remote.Client the reconciler needs.
type Lister interface {
	ListCredentials(ctx context.Context) ([]remote.Credential, error)
}

type Reconciler struct {
	lister Lister
	logger *slog.Logger
}

func NewReconciler(lister Lister, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		lister: lister,
		logger: logger.With("module", "credential_reconciler"),
	}
}

// Reconcile returns a corrected copy of requirements. The remote store is
// listed exactly once. When listing fails for any reason, including a 405,
// every requirement is reported as not configured.
func (r *Reconciler) Reconcile(ctx context.Context, requirements []models.CredentialRequirement) []models.CredentialRequirement {
	if len(requirements) == 0 {
		return make([]models.CredentialRequirement, 0)
	}

	remoteCredentials, err := r.lister.ListCredentials(ctx)
	if err != nil {
		if remote.IsMethodNotAllowed(err) {
			r.logger.WarnContext(ctx, "Remote server does not allow listing credentials, treating store as empty")
		} else {
			r.logger.ErrorContext(ctx, "Failed to list remote credentials, treating store as empty", "error", err)
		}

		remoteCredentials = nil
	}

	return Match(requirements, remoteCredentials)
}

// Match applies the matching rules to requirements against a fetched
// credential set: first by a previously known remote id, then by the exact
// (type, name) pair. The first match wins.
func Match(requirements []models.CredentialRequirement, remoteCredentials []remote.Credential) []models.CredentialRequirement {
	byID := make(map[string]remote.Credential, len(remoteCredentials))
	byTypeAndName := make(map[string]remote.Credential, len(remoteCredentials))

	for _, credential := range remoteCredentials {
		if _, exists := byID[credential.ID]; !exists {
			byID[credential.ID] = credential
		}

		key := typeAndName(credential.Type, credential.Name)
		if _, exists := byTypeAndName[key]; !exists {
			byTypeAndName[key] = credential
		}
	}

	reconciled := make([]models.CredentialRequirement, len(requirements))

	for i, requirement := range requirements {
		requirement.IsConfigured = false

		if match, ok := findMatch(requirement, byID, byTypeAndName); ok {
			requirement.IsConfigured = true
			requirement.RemoteCredentialID = match.ID
		} else {
			requirement.RemoteCredentialID = ""
		}

		reconciled[i] = requirement
	}

	return reconciled
}

func findMatch(
	requirement models.CredentialRequirement,
	byID map[string]remote.Credential,
	byTypeAndName map[string]remote.Credential,
) (remote.Credential, bool) {
	if requirement.RemoteCredentialID != "" {
		if credential, ok := byID[requirement.RemoteCredentialID]; ok {
			return credential, true
		}
	}

	credential, ok := byTypeAndName[typeAndName(requirement.CredentialType, requirement.CredentialName)]

	return credential, ok
}

func typeAndName(credentialType, name string) string {
	return credentialType + "\x00" + name
}
