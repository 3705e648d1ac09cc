package service

import (
	"context"

	"recipenest/internal/cache"
	"recipenest/internal/models"
	"recipenest/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow makes the current user follow the target username. Following
// an already-followed user is a no-op.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) error {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == userID {
		return models.NewValidationError("You cannot follow yourself")
	}

	if err := s.followRepo.Follow(ctx, userID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, username)
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) error {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == userID {
		return models.NewValidationError("You cannot unfollow yourself")
	}

	if err := s.followRepo.Unfollow(ctx, userID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, username)
	return nil
}

// GetFollowers lists the users following the target username, with the
// viewer's followed flag overlaid in a single IN query.
func (s *FollowService) GetFollowers(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]models.Profile, error) {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowers(ctx, target.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.toProfiles(ctx, users, currentUserID)
}

func (s *FollowService) GetFollowing(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]models.Profile, error) {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowing(ctx, target.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.toProfiles(ctx, users, currentUserID)
}

func (s *FollowService) resolveTarget(ctx context.Context, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return target, nil
}

func (s *FollowService) toProfiles(ctx context.Context, users []models.User, currentUserID uint) ([]models.Profile, error) {
	profiles := make([]models.Profile, len(users))
	for i := range users {
		profiles[i] = users[i].ToProfile()
	}
	if currentUserID == 0 || len(users) == 0 {
		return profiles, nil
	}

	userIDs := make([]uint, len(users))
	for i := range users {
		userIDs[i] = users[i].ID
	}
	followedIDs, err := s.followRepo.GetFollowedUserIDs(ctx, currentUserID, userIDs)
	if err != nil {
		return nil, err
	}
	followed := make(map[uint]bool, len(followedIDs))
	for _, id := range followedIDs {
		followed[id] = true
	}
	for i := range profiles {
		profiles[i].Followed = followed[profiles[i].ID]
	}
	return profiles, nil
}
