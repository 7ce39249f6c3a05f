package handlers

import (
	"errors"

	"todo/internal/logger"
	"todo/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Something went wrong"

// errorResponses maps service failures to a status and the message shown to clients.
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrInvalidTitle, fiber.StatusUnprocessableEntity, "Title must be at least 3 characters long!"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password!"},
	{services.ErrEmailMismatch, fiber.StatusForbidden, "You are not authorized to perform this action!"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "User does not exist!"},
	{services.ErrTaskNotFound, fiber.StatusNotFound, "Task not found!"},
	{services.ErrEmailTaken, fiber.StatusConflict, "User with this email already exists!"},
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// respondError writes the envelope for a service error. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return errorJSON(c, r.status, r.message)
		}
	}

	logger.ErrorContext(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, internalErrorMessage)
}

// ErrorHandler renders errors that escape the handlers, such as unknown routes,
// in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return errorJSON(c, fe.Code, fe.Message)
	}
	return respondError(c, err)
}

// bind parses the JSON body into out and validates it. On failure the
// response has already been written and the returned error is what the
// handler should return.
func bind(c *fiber.Ctx, v *validator.Validate, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		logger.WarnContext(c.UserContext(), "invalid request body", "path", c.Path(), "error", err)
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := v.Struct(out); err != nil {
		fields, ok := validationErrors(err)
		if !ok {
			return false, respondError(c, err)
		}
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   true,
			"message": "Validation failed",
			"errors":  fields,
		})
	}
	return true, nil
}
