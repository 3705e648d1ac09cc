package repository

import (
	"context"

	"recipenest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByIDWithDetails(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error)
	ListByRecipe(ctx context.Context, recipeID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentIDs []uint, currentUserID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, commentID uint) error
	Unlike(ctx context.Context, userID, commentID uint) error
	GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDWithDetails loads a comment with its like count and the
// viewer's liked flag.
func (r *commentRepository) GetByIDWithDetails(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&comment, "comments.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByRecipe pages over root comments only. Replies are fetched
// separately by parent id set.
func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("comments.recipe_id = ? AND comments.parent_id IS NULL", recipeID).
		Order("comments.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []uint, currentUserID uint) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var replies []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("comments.parent_id IN ?", parentIDs).
		Order("comments.created_at ASC").
		Find(&replies).Error
	return replies, err
}

// applyCommentDetails adds the like count and the viewer's liked flag as subqueries.
func (r *commentRepository) applyCommentDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) as like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) as liked",
			currentUserID)
	}
	return db.Select(selectQuery + ", false as liked")
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CommentLike{UserID: userID, CommentID: commentID}).Error
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{}).Error
}

func (r *commentRepository) GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) ([]uint, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var likedIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &likedIDs).Error
	return likedIDs, err
}
