// Package web provides HTTP handlers and REST API endpoints for workflow
// analysis and deployment.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	accountService  *services.Account
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	accountService *services.Account,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		accountService:  accountService,
		validator:       validator,
	}
}

// respondResult writes a successful result with status, or maps the failure
// that ended the operation.
func respondResult(c fiber.Ctx, result deployment.Result, status int) error {
	if !result.Success {
		return handleServiceError(c, result.Err)
	}

	return c.Status(status).JSON(result)
}

func (h *APIHandlers) UploadWorkflow(c fiber.Ctx) error {
	result, err := h.workflowService.Upload(c.Context(), c.Query("owner_id"), c.Body())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context(), c.Query("owner_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(WorkflowListResponse{
		Workflows:  workflows,
		TotalCount: len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflowGraph(c fiber.Ctx) error {
	result, err := h.workflowService.UpdateGraph(c.Context(), c.Params("id"), c.Body())
	if err != nil {
		return handleServiceError(c, err)
	}

	return respondResult(c, result, fiber.StatusOK)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Delete(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) DeployWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Deploy(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Activate(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) DeactivateWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Deactivate(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) AutoActivateWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.AutoActivate(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) ReconcileWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Reconcile(c.Context(), c.Params("id")), fiber.StatusOK)
}

func (h *APIHandlers) AnalyzeWorkflow(c fiber.Ctx) error {
	return respondResult(c, h.workflowService.Analyze(c.Context(), c.Params("id")), fiber.StatusOK)
}

// CreateCredential answers 201 once the credential exists remotely, even
// when a chained auto-activation failed; the chained result tells.
func (h *APIHandlers) CreateCredential(c fiber.Ctx) error {
	var req deployment.CredentialRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	result, err := h.workflowService.CreateCredential(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return respondResult(c, result, fiber.StatusCreated)
}

func (h *APIHandlers) ConnectAccount(c fiber.Ctx) error {
	var req ConnectAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	account, err := h.accountService.Connect(c.Context(), &models.RemoteAccount{
		OwnerID: c.Params("ownerId"),
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformAccountResponse(account))
}

func (h *APIHandlers) GetAccount(c fiber.Ctx) error {
	account, err := h.accountService.Get(c.Context(), c.Params("ownerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformAccountResponse(account))
}

func (h *APIHandlers) DeleteAccount(c fiber.Ctx) error {
	err := h.accountService.Delete(c.Context(), c.Params("ownerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "flowgate API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "flowgate API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
