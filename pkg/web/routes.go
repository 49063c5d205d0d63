package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the REST API on router.
func RegisterRoutes(router fiber.Router, handlers *APIHandlers) {
	w := router.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.UploadWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id/graph", handlers.UpdateWorkflowGraph)
	w.Delete("/:id", handlers.DeleteWorkflow)

	w.Post("/:id/deploy", handlers.DeployWorkflow)
	w.Post("/:id/activate", handlers.ActivateWorkflow)
	w.Post("/:id/deactivate", handlers.DeactivateWorkflow)
	w.Post("/:id/auto-activate", handlers.AutoActivateWorkflow)
	w.Post("/:id/reconcile", handlers.ReconcileWorkflow)
	w.Post("/:id/analyze", handlers.AnalyzeWorkflow)
	w.Post("/:id/credentials", handlers.CreateCredential)

	a := router.Group("/accounts")
	a.Put("/:ownerId", handlers.ConnectAccount)
	a.Get("/:ownerId", handlers.GetAccount)
	a.Delete("/:ownerId", handlers.DeleteAccount)

	router.Get("/health", handlers.HealthCheck)
}
