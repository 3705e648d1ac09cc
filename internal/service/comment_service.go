package service

import (
	"context"
	"errors"
	"time"

	"recipenest/internal/models"
	"recipenest/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	recipeRepo  repository.RecipeRepository
}

type CreateCommentInput struct {
	UserID   uint
	RecipeID uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(commentRepo repository.CommentRepository, recipeRepo repository.RecipeRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		recipeRepo:  recipeRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	// The visibility check doubles as the existence check.
	if _, err := s.visibleRecipe(ctx, in.RecipeID, in.UserID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.getComment(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.RecipeID != in.RecipeID {
			return nil, models.NewValidationError("Parent comment belongs to a different recipe")
		}
		// Replies nest one level only.
		if parent.ParentID != nil {
			return nil, models.NewValidationError("Replies to replies are not allowed")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		UserID:   in.UserID,
		RecipeID: in.RecipeID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.getComment(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, recipeID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.visibleRecipe(ctx, recipeID, currentUserID); err != nil {
		return nil, err
	}

	roots, err := s.commentRepo.ListByRecipe(ctx, recipeID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(roots) == 0 {
		return roots, nil
	}

	rootIDs := make([]uint, len(roots))
	for i, root := range roots {
		rootIDs[i] = root.ID
	}
	replies, err := s.commentRepo.ListReplies(ctx, rootIDs, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byParent := make(map[uint][]*models.Comment, len(roots))
	for _, reply := range replies {
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
	}
	for _, root := range roots {
		root.Replies = byParent[root.ID]
	}
	return roots, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment, err := s.getComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	now := time.Now()
	comment.Content = in.Content
	comment.IsEdited = true
	comment.EditedAt = &now
	comment.LikeCount, comment.Liked = 0, false
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment author and the recipe
// author may both delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		recipe, err := s.recipeRepo.GetByID(ctx, comment.RecipeID, userID)
		if err != nil || recipe.UserID != userID {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the viewer's like on a comment.
func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	if _, err := s.getComment(ctx, commentID); err != nil {
		return nil, err
	}

	likedIDs, err := s.commentRepo.GetLikedCommentIDs(ctx, userID, []uint{commentID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if len(likedIDs) > 0 {
		err = s.commentRepo.Unlike(ctx, userID, commentID)
	} else {
		err = s.commentRepo.Like(ctx, userID, commentID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	updated, err := s.commentRepo.GetByIDWithDetails(ctx, commentID, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

func (s *CommentService) getComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) visibleRecipe(ctx context.Context, recipeID, currentUserID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", recipeID)
		}
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}
