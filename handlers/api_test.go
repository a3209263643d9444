package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tree-system/models"
	"task-tree-system/services"
	"task-tree-system/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, stores.Backend) {
	t.Helper()
	backend := stores.NewMemory()
	require.NoError(t, stores.Seed(backend,
		stores.SeedUser{Username: "user", PasswordHash: "seed-hash"},
		models.DefaultRewardCatalog))

	locks := services.NewAccountLocks()
	app := fiber.New()
	SetupAuthRoutes(app, services.NewAuthService(backend))
	SetupTaskRoutes(app, services.NewTaskService(backend, locks))
	SetupPointRoutes(app, services.NewCompletionService(backend, locks))
	SetupRewardRoutes(app, services.NewUnlockService(backend, locks), nil)
	return app, backend
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	UserPoints *int64          `json:"user_points"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var data struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.UserID)
	return data.UserID
}

func TestTaskCompletionFlow(t *testing.T) {
	app, _ := newTestApp(t)
	userID := registerUser(t, app, "alice")

	status, env := doJSON(t, app, http.MethodPost, "/api/tasks", fiber.Map{
		"user_id": userID,
		"title":   "Buy flowers",
		"points":  20,
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	var created struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, env = doJSON(t, app, http.MethodPost, "/api/points", fiber.Map{
		"user_id": userID,
		"task_id": created.TaskID,
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	var result struct {
		AddedPoints int64 `json:"added_points"`
		TotalPoints int64 `json:"total_points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(20), result.AddedPoints)
	assert.Equal(t, int64(20), result.TotalPoints)

	// Stale retry: conflict, not a validation or routing failure.
	status, env = doJSON(t, app, http.MethodPost, "/api/points", fiber.Map{
		"user_id": userID,
		"task_id": created.TaskID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodGet, "/api/points?user_id="+userID, nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		Points         int64 `json:"points"`
		CompletedTasks int64 `json:"completed_tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(20), summary.Points)
	assert.Equal(t, int64(1), summary.CompletedTasks)
}

func TestRewardListingAndUnlock(t *testing.T) {
	app, backend := newTestApp(t)
	userID := registerUser(t, app, "alice")

	_, err := backend.AddPoints(userID, 20)
	require.NoError(t, err)

	status, env := doJSON(t, app, http.MethodGet, "/api/rewards?user_id="+userID, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	require.NotNil(t, env.UserPoints)
	assert.Equal(t, int64(20), *env.UserPoints)

	var states []struct {
		ID           string `json:"id"`
		UnlockPoints int64  `json:"unlock_points"`
		Unlocked     bool   `json:"unlocked"`
		CanUnlock    bool   `json:"can_unlock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &states))
	require.Len(t, states, len(models.DefaultRewardCatalog))

	// The free tier reads unlocked from the start; everything affordable is
	// claimable until claimed.
	assert.Equal(t, int64(0), states[0].UnlockPoints)
	assert.True(t, states[0].Unlocked)
	assert.True(t, states[0].CanUnlock)
	assert.False(t, states[1].Unlocked)

	status, env = doJSON(t, app, http.MethodPut, "/api/rewards/"+states[0].ID+"/unlock", fiber.Map{
		"user_id": userID,
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	status, env = doJSON(t, app, http.MethodPut, "/api/rewards/"+states[0].ID+"/unlock", fiber.Map{
		"user_id": userID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	// threshold 50 vs balance 20: rejected with the shortfall spelled out.
	status, env = doJSON(t, app, http.MethodPut, "/api/rewards/"+states[1].ID+"/unlock", fiber.Map{
		"user_id": userID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "short 30")
}

type stubIconStore struct {
	calls int
}

func (s *stubIconStore) Upload(_ context.Context, _ *multipart.FileHeader, key string) (string, error) {
	s.calls++
	return "https://cdn.example.com/" + key, nil
}

func doIconUpload(t *testing.T, app *fiber.App, rewardID string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("icon", "berry.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/rewards/"+rewardID+"/icon", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRewardIconUploadResolvesRewardFirst(t *testing.T) {
	backend := stores.NewMemory()
	require.NoError(t, stores.Seed(backend,
		stores.SeedUser{Username: "user", PasswordHash: "seed-hash"},
		models.DefaultRewardCatalog))

	icons := &stubIconStore{}
	app := fiber.New()
	SetupRewardRoutes(app, services.NewUnlockService(backend, services.NewAccountLocks()), icons)

	// An unknown reward is rejected before anything reaches storage, so no
	// orphaned object is left behind.
	status, env := doIconUpload(t, app, "no-such-reward")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Zero(t, icons.calls)

	rewards, err := backend.Rewards()
	require.NoError(t, err)
	status, env = doIconUpload(t, app, rewards[0].ID)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	assert.Equal(t, 1, icons.calls)

	updated, err := backend.RewardByID(rewards[0].ID)
	require.NoError(t, err)
	assert.Contains(t, updated.IconURL, "https://cdn.example.com/icons/")
}

func TestRewardIconUploadWithoutStorage(t *testing.T) {
	app, backend := newTestApp(t)
	rewards, err := backend.Rewards()
	require.NoError(t, err)

	status, env := doIconUpload(t, app, rewards[0].ID)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Success)
}

func TestTaskEndpointsValidateAndScope(t *testing.T) {
	app, _ := newTestApp(t)
	alice := registerUser(t, app, "alice")
	bob := registerUser(t, app, "bobby")

	status, env := doJSON(t, app, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodPost, "/api/tasks", fiber.Map{
		"user_id":  alice,
		"title":    "Plan date night",
		"category": "Date Night",
	})
	require.Equal(t, http.StatusOK, status)
	var created struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Bob cannot see or delete Alice's task; it reads as absent.
	status, env = doJSON(t, app, http.MethodDelete, "/api/tasks/"+created.TaskID+"?user_id="+bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodGet, "/api/tasks?user_id="+alice+"&category=date-night", nil)
	require.Equal(t, http.StatusOK, status)
	var tasks []struct {
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Plan date night", tasks[0].Title)
	assert.Equal(t, "date-night", tasks[0].Category)

	status, env = doJSON(t, app, http.MethodGet, "/api/tasks/stats?user_id="+alice, nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Total   int64 `json:"total"`
		Pending int64 `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
}

func TestAuthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "ab",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	registerUser(t, app, "alice")

	status, env = doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice",
		"password": "wrongpw",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	var data struct {
		Username string `json:"username"`
		Points   int64  `json:"points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice", data.Username)
	assert.Equal(t, int64(0), data.Points)
}
