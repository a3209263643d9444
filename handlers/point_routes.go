package handlers

import (
	"fmt"

	"task-tree-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPointRoutes(app *fiber.App, completion *services.CompletionService) {
	group := app.Group("/api/points")

	group.Get("/", func(c *fiber.Ctx) error {
		userID, okParam := requireUserID(c)
		if !okParam {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		summary, err := completion.Summary(userID)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, summary)
	})

	// Completing a task is the only way points are earned.
	group.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			TaskID string `json:"task_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" || req.TaskID == "" {
			return fail(c, fiber.StatusBadRequest, "user_id and task_id are required")
		}

		result, err := completion.CompleteTask(req.UserID, req.TaskID)
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c,
			fmt.Sprintf("task completed, %d points earned", result.AddedPoints),
			result)
	})
}
