package handlers

import (
	"errors"
	"fmt"
	"log"

	"task-tree-system/services"

	"github.com/gofiber/fiber/v2"
)

// Every endpoint answers with the same envelope: {success, message?, data?}.

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okMessage(c *fiber.Ctx, message string, data interface{}) error {
	resp := fiber.Map{"success": true, "message": message}
	if data != nil {
		resp["data"] = data
	}
	return c.JSON(resp)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// failErr maps the service error taxonomy onto HTTP statuses. Anything
// untyped is an internal fault: logged here, generic message to the caller.
func failErr(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return fail(c, fiber.StatusBadRequest, validation.Message)
	}
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		return fail(c, fiber.StatusNotFound, notFound.Error())
	}
	var insufficient *services.InsufficientPointsError
	if errors.As(err, &insufficient) {
		return fail(c, fiber.StatusBadRequest,
			fmt.Sprintf("insufficient points: need %d, have %d (short %d)",
				insufficient.Required, insufficient.Balance, insufficient.Shortfall()))
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyUnlocked),
		errors.Is(err, services.ErrDuplicateUsername):
		return fail(c, fiber.StatusConflict, err.Error())
	}

	log.Printf("[HTTP] internal error on %s %s: %v", c.Method(), c.Path(), err)
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

// requireUserID pulls the user_id query parameter every read endpoint needs.
func requireUserID(c *fiber.Ctx) (string, bool) {
	userID := c.Query("user_id")
	return userID, userID != ""
}
