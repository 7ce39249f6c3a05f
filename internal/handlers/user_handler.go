package handlers

import (
	"todo/internal/credentials"
	"todo/internal/middleware"
	"todo/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for accounts.
type UserHandler struct {
	service  *services.UserService
	tokens   *credentials.TokenManager
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler. tokens backs the guard on the
// authenticated routes.
func NewUserHandler(service *services.UserService, tokens *credentials.TokenManager) *UserHandler {
	return &UserHandler{
		service:  service,
		tokens:   tokens,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/create", h.HandleCreate)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/logout", h.HandleLogout)

	guard := middleware.AuthRequired(h.tokens)
	userRoutes.Put("/update", guard, h.HandleUpdate)
	userRoutes.Get("/profile", guard, h.HandleProfile)
}

// HandleCreate registers a user and returns the token in the Authorization header.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.RegisterInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}

	result, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderAuthorization, "Bearer "+result.Token)
	return c.Status(fiber.StatusCreated).JSON(result.User)
}

// HandleLogin authenticates a user and returns the token in the Authorization header.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}

	result, err := h.service.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderAuthorization, "Bearer "+result.Token)
	return c.JSON(result.User)
}

// HandleLogout clears the Authorization header. The token itself stays valid
// until it expires.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAuthorization, "")
	return c.JSON(fiber.Map{
		"message": h.service.Logout(),
	})
}

// HandleUpdate edits the caller's profile.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var in services.UpdateUserInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), *caller, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleProfile returns the caller's profile.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.service.Profile(c.UserContext(), *caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
