package handlers

import (
	"time"

	"task-tree-system/services"
	"task-tree-system/stores"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, tasks *services.TaskService) {
	group := app.Group("/api/tasks")

	group.Get("/", func(c *fiber.Ctx) error {
		userID, okParam := requireUserID(c)
		if !okParam {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		list, err := tasks.List(userID, stores.TaskFilter{
			Status:   c.Query("status"),
			Category: c.Query("category"),
		})
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, list)
	})

	group.Get("/stats", func(c *fiber.Ctx) error {
		userID, okParam := requireUserID(c)
		if !okParam {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		stats, err := tasks.Stats(userID)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, stats)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			UserID      string     `json:"user_id"`
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Category    string     `json:"category"`
			AssignedTo  string     `json:"assigned_to"`
			Points      int64      `json:"points"`
			DueDate     *time.Time `json:"due_date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		task, err := tasks.Create(req.UserID, services.CreateTaskParams{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			AssignedTo:  req.AssignedTo,
			Points:      req.Points,
			DueDate:     req.DueDate,
		})
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "task created", fiber.Map{"task_id": task.ID})
	})

	group.Put("/:id", func(c *fiber.Ctx) error {
		var req struct {
			UserID      string     `json:"user_id"`
			Title       *string    `json:"title"`
			Description *string    `json:"description"`
			AssignedTo  *string    `json:"assigned_to"`
			Status      *string    `json:"status"`
			DueDate     *time.Time `json:"due_date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		err := tasks.Update(req.UserID, c.Params("id"), stores.TaskUpdate{
			Title:       req.Title,
			Description: req.Description,
			AssignedTo:  req.AssignedTo,
			Status:      req.Status,
			DueDate:     req.DueDate,
		})
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "task updated", nil)
	})

	group.Delete("/:id", func(c *fiber.Ctx) error {
		userID, okParam := requireUserID(c)
		if !okParam {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		if err := tasks.Delete(userID, c.Params("id")); err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "task deleted", nil)
	})
}
