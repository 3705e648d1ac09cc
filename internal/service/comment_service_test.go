package service

import (
	"context"
	"strings"
	"testing"

	"recipenest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn             func(context.Context, *models.Comment) error
	getByIDFn            func(context.Context, uint) (*models.Comment, error)
	getByIDWithDetailsFn func(context.Context, uint, uint) (*models.Comment, error)
	listByRecipeFn       func(context.Context, uint, int, int, uint) ([]*models.Comment, error)
	listRepliesFn        func(context.Context, []uint, uint) ([]*models.Comment, error)
	updateFn             func(context.Context, *models.Comment) error
	deleteFn             func(context.Context, uint) error
	likeFn               func(context.Context, uint, uint) error
	unlikeFn             func(context.Context, uint, uint) error
	getLikedCommentIDsFn func(context.Context, uint, []uint) ([]uint, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByIDWithDetails(ctx context.Context, id, currentUserID uint) (*models.Comment, error) {
	return s.getByIDWithDetailsFn(ctx, id, currentUserID)
}
func (s *commentRepoStub) ListByRecipe(ctx context.Context, recipeID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	return s.listByRecipeFn(ctx, recipeID, limit, offset, currentUserID)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentIDs []uint, currentUserID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentIDs, currentUserID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Like(ctx context.Context, userID, commentID uint) error {
	return s.likeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Unlike(ctx context.Context, userID, commentID uint) error {
	return s.unlikeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error) {
	return s.getLikedCommentIDsFn(ctx, userID, commentIDs)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, RecipeID: 1, Content: "Nice"}, nil
		},
		getByIDWithDetailsFn: func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, RecipeID: 1, Content: "Nice"}, nil
		},
		listByRecipeFn:       func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Comment, error) { return nil, nil },
		listRepliesFn:        func(_ context.Context, _ []uint, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:             func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:             func(_ context.Context, _ uint) error { return nil },
		likeFn:               func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:             func(_ context.Context, _, _ uint) error { return nil },
		getLikedCommentIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
	}
}

func TestCreateCommentValidation(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopRecipeRepo())

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, RecipeID: 1})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))

	_, err = svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, RecipeID: 1, Content: strings.Repeat("a", maxCommentLen+1),
	})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestCreateCommentHiddenRecipe(t *testing.T) {
	recipes := noopRecipeRepo()
	recipes.getByIDFn = func(_ context.Context, _, _ uint) (*models.Recipe, error) {
		return nil, gorm.ErrRecordNotFound
	}
	created := false
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error { created = true; return nil }

	svc := NewCommentService(comments, recipes)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 2, RecipeID: 5, Content: "Looks great",
	})
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))
	assert.False(t, created)
}

func TestCreateReplyToReplyRejected(t *testing.T) {
	parent := uint(4)
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		grandparent := uint(2)
		return &models.Comment{ID: id, UserID: 1, RecipeID: 1, ParentID: &grandparent}, nil
	}

	svc := NewCommentService(comments, noopRecipeRepo())
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, RecipeID: 1, ParentID: &parent, Content: "Me too",
	})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestCreateReplyWrongRecipeRejected(t *testing.T) {
	parent := uint(4)
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 1, RecipeID: 99}, nil
	}

	svc := NewCommentService(comments, noopRecipeRepo())
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, RecipeID: 1, ParentID: &parent, Content: "Me too",
	})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestListCommentsNestsReplies(t *testing.T) {
	rootA := &models.Comment{ID: 1, RecipeID: 1, Content: "First"}
	rootB := &models.Comment{ID: 2, RecipeID: 1, Content: "Second"}
	replyToA := &models.Comment{ID: 3, RecipeID: 1, Content: "Agreed", ParentID: &rootA.ID}

	comments := noopCommentRepo()
	comments.listByRecipeFn = func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Comment, error) {
		return []*models.Comment{rootA, rootB}, nil
	}
	var requestedParents []uint
	comments.listRepliesFn = func(_ context.Context, parentIDs []uint, _ uint) ([]*models.Comment, error) {
		requestedParents = parentIDs
		return []*models.Comment{replyToA}, nil
	}

	svc := NewCommentService(comments, noopRecipeRepo())
	got, err := svc.ListComments(context.Background(), 1, 20, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 2}, requestedParents, "replies fetched in one batch by root id set")
	require.Len(t, got, 2, "replies never appear at the top level")
	require.Len(t, got[0].Replies, 1)
	assert.Equal(t, uint(3), got[0].Replies[0].ID)
	assert.Empty(t, got[1].Replies)
}

func TestUpdateCommentMarksEdited(t *testing.T) {
	comments := noopCommentRepo()
	var saved *models.Comment
	comments.updateFn = func(_ context.Context, c *models.Comment) error { saved = c; return nil }

	svc := NewCommentService(comments, noopRecipeRepo())
	_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
		UserID: 1, CommentID: 3, Content: "Even better with thyme",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.IsEdited)
	require.NotNil(t, saved.EditedAt)
}

func TestUpdateCommentOwnership(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 9, RecipeID: 1}, nil
	}

	svc := NewCommentService(comments, noopRecipeRepo())
	_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
		UserID: 1, CommentID: 3, Content: "edited",
	})
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))
}

func TestDeleteCommentByRecipeAuthor(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 5, RecipeID: 7}, nil
	}
	deleted := false
	comments.deleteFn = func(_ context.Context, _ uint) error { deleted = true; return nil }

	recipes := noopRecipeRepo()
	recipes.getByIDFn = func(_ context.Context, id, _ uint) (*models.Recipe, error) {
		return &models.Recipe{ID: id, UserID: 2}, nil
	}

	svc := NewCommentService(comments, recipes)
	require.NoError(t, svc.DeleteComment(context.Background(), 2, 3))
	assert.True(t, deleted)
}

func TestDeleteCommentForbiddenForStranger(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 5, RecipeID: 7}, nil
	}
	recipes := noopRecipeRepo()
	recipes.getByIDFn = func(_ context.Context, id, _ uint) (*models.Recipe, error) {
		return &models.Recipe{ID: id, UserID: 2}, nil
	}

	svc := NewCommentService(comments, recipes)
	err := svc.DeleteComment(context.Background(), 11, 3)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))
}

func TestToggleCommentLike(t *testing.T) {
	comments := noopCommentRepo()
	var liked, unliked bool
	comments.likeFn = func(_ context.Context, _, _ uint) error { liked = true; return nil }
	comments.unlikeFn = func(_ context.Context, _, _ uint) error { unliked = true; return nil }

	svc := NewCommentService(comments, noopRecipeRepo())

	_, err := svc.ToggleLike(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, liked)

	liked = false
	comments.getLikedCommentIDsFn = func(_ context.Context, _ uint, ids []uint) ([]uint, error) {
		return ids, nil
	}
	_, err = svc.ToggleLike(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, unliked)
	assert.False(t, liked)
}
