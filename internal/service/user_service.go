package service

import (
	"context"
	"mime/multipart"
	"strings"

	"recipenest/internal/cache"
	"recipenest/internal/models"
	"recipenest/internal/observability"
	"recipenest/internal/repository"
	"recipenest/internal/storage"

	"github.com/google/uuid"
)

const (
	maxBioLen         = 500
	maxDisplayNameLen = 100
)

type UserService struct {
	userRepo repository.UserRepository
	s3       storage.AwsS3
}

type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
}

func NewUserService(userRepo repository.UserRepository, s3 storage.AwsS3) *UserService {
	return &UserService{
		userRepo: userRepo,
		s3:       s3,
	}
}

func (s *UserService) GetMe(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile returns the public profile for a username. The cached copy
// is viewer-neutral; the followed flag always comes from a live query.
func (s *UserService) GetProfile(ctx context.Context, username string, currentUserID uint) (*models.Profile, error) {
	if currentUserID == 0 {
		var profile models.Profile
		err := cache.Aside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, func() error {
			user, err := s.userRepo.GetProfile(ctx, username, 0)
			if err != nil {
				return err
			}
			profile = user.ToProfile()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}

	user, err := s.userRepo.GetProfile(ctx, username, currentUserID)
	if err != nil {
		return nil, err
	}
	profile := user.ToProfile()
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, models.NewValidationError("Display name cannot be empty")
		}
		if len(name) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = name
	}

	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = strings.TrimSpace(*in.Bio)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

// UploadAvatar stores the image and points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (*models.User, error) {
	if s.s3 == nil {
		return nil, models.NewValidationError("Avatar uploads are not available")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.s3.UploadFile(ctx, uuid.NewString(), file, "avatars", storage.AllowImage...)
	if err != nil {
		return nil, models.NewValidationError("Avatar upload failed: " + err.Error())
	}
	observability.MediaUploads.WithLabelValues("avatar").Inc()

	user.AvatarURL = s.s3.GetPublicLinkKey(key)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAvatar clears the user's avatar. Object removal is best-effort.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarURL == "" {
		return user, nil
	}

	if s.s3 != nil {
		if key := avatarKey(user.AvatarURL); key != "" {
			_ = s.s3.DeleteFile(ctx, key)
		}
	}

	user.AvatarURL = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// avatarKey recovers the object key from a public avatar URL.
func avatarKey(url string) string {
	idx := strings.Index(url, "/avatars/")
	if idx < 0 {
		return ""
	}
	return url[idx+1:]
}
