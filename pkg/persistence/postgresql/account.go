package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/flowgate/pkg/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID string) (*models.RemoteAccount, error) {
	var account models.RemoteAccount

	err := r.db.QueryRowContext(ctx, `
		SELECT owner_id, base_url, api_key, created_at, updated_at
		FROM remote_accounts
		WHERE owner_id = $1
	`, ownerID).Scan(&account.OwnerID, &account.BaseURL, &account.APIKey, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan remote account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *models.RemoteAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO remote_accounts (owner_id, base_url, api_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE SET
			base_url = EXCLUDED.base_url,
			api_key = EXCLUDED.api_key,
			updated_at = EXCLUDED.updated_at
	`, account.OwnerID, account.BaseURL, account.APIKey, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save remote account: %w", err)
	}

	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM remote_accounts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete remote account: %w", err)
	}

	return nil
}
