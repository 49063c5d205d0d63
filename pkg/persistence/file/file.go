// Package file provides file-based persistence for workflows and remote accounts.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/flowgate/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
// Workflows live under <root>/workflows and accounts under <root>/accounts.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	accountRepo  *AccountRepository
}

// NewPersistence accepts a directory or a file:// URL.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		accountRepo:  NewAccountRepository(cleanRoot),
	}
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) AccountRepository() persistence.AccountRepository {
	return fp.accountRepo
}

// documentPath resolves <root>/<dir>/<key>.json, refusing keys that would
// escape the directory.
func documentPath(root, dir, key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", persistence.ErrInvalidKey
	}

	return filepath.Join(root, dir, key+".json"), nil
}
