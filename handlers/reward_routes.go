package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"task-tree-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IconUploader puts reward icons somewhere public. Satisfied by
// utils.ObjectStore; nil disables icon uploads.
type IconUploader interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error)
}

func SetupRewardRoutes(app *fiber.App, unlock *services.UnlockService, icons IconUploader) {
	group := app.Group("/api/rewards")

	group.Get("/", func(c *fiber.Ctx) error {
		userID, okParam := requireUserID(c)
		if !okParam {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		states, points, err := unlock.ListRewards(userID)
		if err != nil {
			return failErr(c, err)
		}
		// Listing carries the balance alongside the envelope so the client
		// can render the progress bar without a second call.
		return c.JSON(fiber.Map{
			"success":     true,
			"data":        states,
			"user_points": points,
		})
	})

	group.Put("/:id/unlock", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" {
			return fail(c, fiber.StatusBadRequest, "user_id is required")
		}

		result, err := unlock.UnlockReward(req.UserID, c.Params("id"))
		if err != nil {
			return failErr(c, err)
		}
		return okMessage(c, fmt.Sprintf("unlocked %q", result.RewardName), result)
	})

	group.Post("/:id/icon", func(c *fiber.Ctx) error {
		if icons == nil {
			return fail(c, fiber.StatusServiceUnavailable, "icon storage not configured")
		}

		// Resolve the reward before touching the bucket; a bogus id must not
		// leave an orphaned object behind.
		reward, err := unlock.Reward(c.Params("id"))
		if err != nil {
			return failErr(c, err)
		}

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "icon file is required")
		}
		if fileHeader.Size > 2*1024*1024 {
			return fail(c, fiber.StatusBadRequest, "icon too large (max 2MB)")
		}

		key := fmt.Sprintf("icons/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
		url, err := icons.Upload(c.UserContext(), fileHeader, key)
		if err != nil {
			return failErr(c, err)
		}

		if err := unlock.UpdateRewardIcon(reward.ID, url); err != nil {
			return failErr(c, err)
		}
		return okMessage(c, "icon updated", fiber.Map{"icon": url})
	})
}
