package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/flowgate/pkg/locker"
	"github.com/dukex/flowgate/pkg/persistence/file"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	api := NewAPI(
		slog.Default(),
		file.NewPersistence(t.TempDir()),
		nil,
		locker.NewMemory(),
		Config{},
	)

	return api.App()
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "flowgate API", body)
}

func TestAPI_HealthCheck(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/livez")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)
}

func TestAPI_Metrics(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/metrics")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/workflows")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"workflows": [], "total_count": 0}`, body)
}
