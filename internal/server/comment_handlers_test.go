package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipenest/internal/models"
	"recipenest/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByIDWithDetails(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByRecipe(ctx context.Context, recipeID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, recipeID, limit, offset, currentUserID)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentIDs []uint, currentUserID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, parentIDs, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) Like(ctx context.Context, userID, commentID uint) error {
	args := m.Called(ctx, userID, commentID)
	return args.Error(0)
}

func (m *MockCommentRepository) Unlike(ctx context.Context, userID, commentID uint) error {
	args := m.Called(ctx, userID, commentID)
	return args.Error(0)
}

func (m *MockCommentRepository) GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, commentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func newCommentTestServer(comments *MockCommentRepository, recipes *MockRecipeRepository) *Server {
	s := &Server{config: testConfig()}
	s.commentService = service.NewCommentService(comments, recipes)
	return s
}

func TestCreateCommentHandler(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		mockSetup      func(*MockCommentRepository, *MockRecipeRepository)
		expectedStatus int
	}{
		{
			name:    "Success",
			content: "Looks delicious",
			mockSetup: func(comments *MockCommentRepository, recipes *MockRecipeRepository) {
				recipes.On("GetByID", mock.Anything, uint(5), uint(1)).
					Return(&models.Recipe{ID: 5, UserID: 2}, nil)
				comments.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Comment).ID = 11
				}).Return(nil)
				comments.On("GetByID", mock.Anything, uint(11)).
					Return(&models.Comment{ID: 11, UserID: 1, RecipeID: 5, Content: "Looks delicious"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Empty Content",
			content:        "",
			mockSetup:      func(_ *MockCommentRepository, _ *MockRecipeRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Too Long",
			content:        strings.Repeat("a", 2001),
			mockSetup:      func(_ *MockCommentRepository, _ *MockRecipeRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "Hidden Recipe",
			content: "Looks delicious",
			mockSetup: func(_ *MockCommentRepository, recipes *MockRecipeRepository) {
				recipes.On("GetByID", mock.Anything, uint(5), uint(1)).
					Return(nil, gorm.ErrRecordNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := new(MockCommentRepository)
			recipes := new(MockRecipeRepository)
			tt.mockSetup(comments, recipes)
			s := newCommentTestServer(comments, recipes)

			app := fiber.New()
			withUser(app, 1)
			app.Post("/recipes/:id/comments", s.CreateComment)

			body, _ := json.Marshal(map[string]string{"content": tt.content})
			req := httptest.NewRequest(http.MethodPost, "/recipes/5/comments", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetCommentsHandler(t *testing.T) {
	comments := new(MockCommentRepository)
	recipes := new(MockRecipeRepository)
	recipes.On("GetByID", mock.Anything, uint(5), uint(0)).
		Return(&models.Recipe{ID: 5}, nil)
	comments.On("ListByRecipe", mock.Anything, uint(5), 20, 0, uint(0)).
		Return([]*models.Comment{{ID: 1, RecipeID: 5, Content: "Nice"}}, nil)
	comments.On("ListReplies", mock.Anything, []uint{1}, uint(0)).
		Return(nil, nil)
	s := newCommentTestServer(comments, recipes)

	app := fiber.New()
	app.Get("/recipes/:id/comments", s.GetComments)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/recipes/5/comments", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Comments []models.Comment `json:"comments"`
		HasMore  bool             `json:"has_more"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Comments, 1)
	assert.False(t, payload.HasMore)
}

func TestDeleteCommentHandler(t *testing.T) {
	t.Run("Recipe Author May Delete", func(t *testing.T) {
		comments := new(MockCommentRepository)
		recipes := new(MockRecipeRepository)
		comments.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Comment{ID: 3, UserID: 5, RecipeID: 7}, nil)
		recipes.On("GetByID", mock.Anything, uint(7), uint(2)).
			Return(&models.Recipe{ID: 7, UserID: 2}, nil)
		comments.On("Delete", mock.Anything, uint(3)).Return(nil)
		s := newCommentTestServer(comments, recipes)

		app := fiber.New()
		withUser(app, 2)
		app.Delete("/comments/:id", s.DeleteComment)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/3", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Stranger Forbidden", func(t *testing.T) {
		comments := new(MockCommentRepository)
		recipes := new(MockRecipeRepository)
		comments.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Comment{ID: 3, UserID: 5, RecipeID: 7}, nil)
		recipes.On("GetByID", mock.Anything, uint(7), uint(9)).
			Return(&models.Recipe{ID: 7, UserID: 2}, nil)
		s := newCommentTestServer(comments, recipes)

		app := fiber.New()
		withUser(app, 9)
		app.Delete("/comments/:id", s.DeleteComment)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/comments/3", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestToggleCommentLikeHandler(t *testing.T) {
	comments := new(MockCommentRepository)
	comments.On("GetByID", mock.Anything, uint(3)).
		Return(&models.Comment{ID: 3, UserID: 5, RecipeID: 7}, nil)
	comments.On("GetLikedCommentIDs", mock.Anything, uint(1), []uint{3}).Return(nil, nil)
	comments.On("Like", mock.Anything, uint(1), uint(3)).Return(nil)
	comments.On("GetByIDWithDetails", mock.Anything, uint(3), uint(1)).
		Return(&models.Comment{ID: 3, UserID: 5, RecipeID: 7, LikeCount: 1, Liked: true}, nil)
	s := newCommentTestServer(comments, new(MockRecipeRepository))

	app := fiber.New()
	withUser(app, 1)
	app.Post("/comments/:id/like", s.ToggleCommentLike)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/comments/3/like", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comment))
	assert.True(t, comment.Liked)
	assert.Equal(t, 1, comment.LikeCount)
}
