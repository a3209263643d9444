package services

import (
	"testing"

	"task-tree-system/models"
	"task-tree-system/stores"

	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T, b stores.Backend, username string, points int64) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Points: points}
	require.NoError(t, b.CreateUser(u))
	return u
}

func testTask(t *testing.T, b stores.Backend, userID, title string, points int64) *models.Task {
	t.Helper()
	task := &models.Task{
		UserID:   userID,
		Title:    title,
		Category: models.DefaultTaskCategory,
		Status:   models.TaskStatusPending,
		Points:   points,
	}
	require.NoError(t, b.CreateTask(task))
	return task
}

func testReward(t *testing.T, b stores.Backend, name string, threshold int64) *models.Reward {
	t.Helper()
	r := &models.Reward{Name: name, UnlockPoints: threshold}
	require.NoError(t, b.CreateReward(r))
	return r
}
