package handlers

import (
	"todo/internal/credentials"
	"todo/internal/middleware"
	"todo/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks. Every route requires a bearer token.
type TaskHandler struct {
	service  *services.TaskService
	tokens   *credentials.TokenManager
	validate *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService, tokens *credentials.TokenManager) *TaskHandler {
	return &TaskHandler{
		service:  service,
		tokens:   tokens,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the task routes with the Fiber app.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	taskRoutes := router.Group("/tasks", middleware.AuthRequired(h.tokens))
	taskRoutes.Post("/create", h.HandleCreate)
	taskRoutes.Get("/", h.HandleList)
	taskRoutes.Get("/:id", h.HandleGet)
	taskRoutes.Put("/update/:id", h.HandleUpdate)
	taskRoutes.Delete("/:id", h.HandleDelete)
}

// HandleCreate creates a task owned by the caller.
func (h *TaskHandler) HandleCreate(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var in services.TaskInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}

	task, err := h.service.Create(c.UserContext(), *caller, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// HandleList returns the caller's tasks.
func (h *TaskHandler) HandleList(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	tasks, err := h.service.List(c.UserContext(), *caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// HandleGet returns one of the caller's tasks.
func (h *TaskHandler) HandleGet(c *fiber.Ctx) error {
	caller, id, ok := h.target(c)
	if !ok {
		return nil
	}

	task, err := h.service.Get(c.UserContext(), *caller, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// HandleUpdate edits one of the caller's tasks.
func (h *TaskHandler) HandleUpdate(c *fiber.Ctx) error {
	caller, id, ok := h.target(c)
	if !ok {
		return nil
	}

	var in services.TaskInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}

	task, err := h.service.Update(c.UserContext(), *caller, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// HandleDelete removes one of the caller's tasks and returns it.
func (h *TaskHandler) HandleDelete(c *fiber.Ctx) error {
	caller, id, ok := h.target(c)
	if !ok {
		return nil
	}

	task, err := h.service.Delete(c.UserContext(), *caller, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// target resolves the caller and the :id parameter. When it reports false
// the error response has already been written.
func (h *TaskHandler) target(c *fiber.Ctx) (*credentials.Identity, uint, bool) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		_ = errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
		return nil, 0, false
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = errorJSON(c, fiber.StatusBadRequest, "Invalid task id")
		return nil, 0, false
	}
	return caller, uint(id), true
}
