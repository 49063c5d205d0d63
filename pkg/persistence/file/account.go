package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence"
)

const accountsDir = "accounts"

// AccountRepository stores one JSON document per owner.
type AccountRepository struct {
	root string
}

func NewAccountRepository(root string) *AccountRepository {
	return &AccountRepository{root: root}
}

func (ar *AccountRepository) GetByOwner(_ context.Context, ownerID string) (*models.RemoteAccount, error) {
	filePath, err := documentPath(ar.root, accountsDir, ownerID)
	if err != nil {
		return nil, persistence.NewAccountError("GetByOwner", ownerID, err)
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch account for owner %s: %w", ownerID, err)
	}

	var account models.RemoteAccount

	err = json.Unmarshal(body, &account)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal account for owner %s: %w", ownerID, err)
	}

	return &account, nil
}

func (ar *AccountRepository) Save(_ context.Context, account *models.RemoteAccount) error {
	filePath, err := documentPath(ar.root, accountsDir, account.OwnerID)
	if err != nil {
		return persistence.NewAccountError("Save", account.OwnerID, err)
	}

	err = os.MkdirAll(filepath.Dir(filePath), 0750)
	if err != nil {
		return fmt.Errorf("failed to create accounts directory: %w", err)
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account for owner %s: %w", account.OwnerID, err)
	}

	return os.WriteFile(filePath, data, 0600)
}

func (ar *AccountRepository) Delete(_ context.Context, ownerID string) error {
	filePath, err := documentPath(ar.root, accountsDir, ownerID)
	if err != nil {
		return persistence.NewAccountError("Delete", ownerID, err)
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete account for owner %s: %w", ownerID, err)
	}

	return nil
}
