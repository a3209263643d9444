package handlers

import (
	"task-tree-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth *services.AuthService) {
	group := app.Group("/api/auth")

	group.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}

		user, err := auth.Register(req.Username, req.Password)
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "registration successful", fiber.Map{
			"user_id":  user.ID,
			"username": user.Username,
		})
	})

	group.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}

		user, err := auth.Login(req.Username, req.Password)
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "login successful", fiber.Map{
			"user_id":  user.ID,
			"username": user.Username,
			"points":   user.Points,
		})
	})
}
