package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipenest/internal/models"
	"recipenest/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestServer(repo *MockUserRepository) *Server {
	return &Server{
		config:      testConfig(),
		userService: service.NewUserService(repo, nil),
	}
}

func TestGetMyProfileIncludesEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{
		ID:          1,
		Username:    "alice",
		DisplayName: "Alice Waters",
		Email:       "alice@example.com",
	}, nil)
	s := newUserTestServer(repo)

	app := fiber.New()
	withUser(app, 1)
	app.Get("/users/me", s.GetMyProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "alice@example.com", payload["email"])
	assert.Equal(t, "Alice Waters", payload["display_name"])
}

func TestUpdateMyProfileDisplayName(t *testing.T) {
	repo := new(MockUserRepository)
	user := &models.User{ID: 1, Username: "alice", DisplayName: "alice", Email: "alice@example.com"}
	repo.On("GetByID", mock.Anything, uint(1)).Return(user, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	s := newUserTestServer(repo)

	app := fiber.New()
	withUser(app, 1)
	app.Put("/users/me", s.UpdateMyProfile)

	body, _ := json.Marshal(map[string]string{"display_name": "Alice Waters"})
	req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Alice Waters", payload["display_name"])
	assert.Equal(t, "alice@example.com", payload["email"])
}

func TestGetUserProfileOmitsEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetProfile", mock.Anything, "alice", uint(0)).Return(&models.User{
		ID:          1,
		Username:    "alice",
		DisplayName: "Alice Waters",
		Email:       "alice@example.com",
	}, nil)
	s := newUserTestServer(repo)

	app := fiber.New()
	app.Get("/users/:username", s.GetUserProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/alice", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotContains(t, payload, "email")
	assert.Equal(t, "Alice Waters", payload["display_name"])
}
