package deployment

import (
	"errors"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/remote"
)

var (
	ErrCredentialsPending = errors.New("not every credential requirement is configured")
	ErrNotDeployed        = errors.New("workflow has not been deployed")
	ErrInvalidTransition  = errors.New("transition is not allowed from the current status")
	ErrMissingRemoteID    = errors.New("remote server returned no workflow id")
)

// Operation names used in Result.Action for calls that do not append a
// deployment record.
const (
	OperationAnalyze          = "analyze"
	OperationReconcile        = "reconcile"
	OperationCreateCredential = "create_credential"
	OperationAutoActivate     = "auto_activate"
)

// Result is returned by every orchestrator operation. Expected failures,
// remote or otherwise, are reported here and never as a Go error.
type Result struct {
	Success  bool             `json:"success"`
	Action   string           `json:"action"`
	Error    string           `json:"error,omitempty"`
	Err      error            `json:"-"`
	Workflow *models.Workflow `json:"workflow,omitempty"`
	// Chained is the outcome of a follow-up transition dispatched after a
	// successful operation, such as auto-activation after credential creation.
	Chained *Result `json:"chained,omitempty"`
}

func succeeded(action string, workflow *models.Workflow) Result {
	return Result{Success: true, Action: action, Workflow: workflow}
}

func failed(action string, workflow *models.Workflow, err error) Result {
	return Result{
		Success:  false,
		Action:   action,
		Error:    remote.Message(err),
		Err:      err,
		Workflow: workflow,
	}
}
