package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/go-playground/validator/v10"
)

// Account manages the per-owner connection to a remote server.
type Account struct {
	accounts persistence.AccountRepository
	remote   remote.Factory
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewAccount(accounts persistence.AccountRepository, factory remote.Factory, logger *slog.Logger) *Account {
	return &Account{
		accounts: accounts,
		remote:   factory,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "account_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Connect verifies the account against the remote server before storing it.
// A server that refuses credential listing with 405 is still accepted.
func (a *Account) Connect(ctx context.Context, account *models.RemoteAccount) (*models.RemoteAccount, error) {
	account.OwnerID = strings.TrimSpace(account.OwnerID)
	account.BaseURL = strings.TrimRight(strings.TrimSpace(account.BaseURL), "/")
	account.APIKey = strings.TrimSpace(account.APIKey)

	err := a.validate.Struct(account)
	if err != nil {
		return nil, err
	}

	client, err := a.remote(account)
	if err != nil {
		return nil, err
	}

	_, err = client.ListCredentials(ctx)
	if err != nil && !remote.IsMethodNotAllowed(err) {
		a.logger.ErrorContext(ctx, "remote account verification failed",
			"owner_id", account.OwnerID,
			"base_url", account.BaseURL,
			"error", err,
		)

		return nil, fmt.Errorf("failed to verify remote account: %w", err)
	}

	existing, err := a.accounts.GetByOwner(ctx, account.OwnerID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if existing != nil {
		account.CreatedAt = existing.CreatedAt
	}

	err = a.accounts.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to save remote account: %w", err)
	}

	a.logger.InfoContext(ctx, "remote account connected", "owner_id", account.OwnerID, "base_url", account.BaseURL)

	return account, nil
}

func (a *Account) Get(ctx context.Context, ownerID string) (*models.RemoteAccount, error) {
	account, err := a.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, persistence.NewAccountError("get", ownerID, ErrAccountNotFound)
	}

	return account, nil
}

func (a *Account) Delete(ctx context.Context, ownerID string) error {
	_, err := a.Get(ctx, ownerID)
	if err != nil {
		return err
	}

	return a.accounts.Delete(ctx, ownerID)
}
