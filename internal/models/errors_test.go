package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusForError(NewValidationError("bad")))
	assert.Equal(t, http.StatusUnauthorized, StatusForError(NewUnauthorizedError("no")))
	assert.Equal(t, http.StatusForbidden, StatusForError(NewForbiddenError("no")))
	assert.Equal(t, http.StatusNotFound, StatusForError(NewNotFoundError("Recipe", 7)))
	assert.Equal(t, http.StatusConflict, StatusForError(NewConflictError("taken")))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(NewInternalError(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(errors.New("boom")))
}

func TestRespondWithErrorHidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError,
			NewInternalError(errors.New("pq: connection refused to db-primary:5432")))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "connection refused")

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "Internal server error", payload.Error)
	assert.Equal(t, "INTERNAL_ERROR", payload.Code)
	assert.Empty(t, payload.Details)
}

func TestRespondWithErrorHidesUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError,
			errors.New("dial tcp 10.0.0.4:6379: i/o timeout"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "i/o timeout")

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "Internal server error", payload.Error)
	assert.Equal(t, "INTERNAL_ERROR", payload.Code)
}
