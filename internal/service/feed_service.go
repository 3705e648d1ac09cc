package service

import (
	"context"

	"recipenest/internal/cache"
	"recipenest/internal/models"
	"recipenest/internal/observability"
	"recipenest/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Feed types accepted by the recipes listing.
const (
	FeedRecent    = "recent"
	FeedPopular   = "popular"
	FeedFollowing = "following"
)

type FeedService struct {
	recipeRepo repository.RecipeRepository
	followRepo repository.FollowRepository
}

type FeedInput struct {
	Feed          string
	Category      string
	Page          int
	Limit         int
	CurrentUserID uint
}

// FeedPage is one page of a recipe listing. HasMore is an approximation:
// it is true whenever the page came back full, so a total divisible by
// the page size yields one trailing empty page.
type FeedPage struct {
	Recipes []*models.Recipe `json:"recipes"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

func NewFeedService(recipeRepo repository.RecipeRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{
		recipeRepo: recipeRepo,
		followRepo: followRepo,
	}
}

func (s *FeedService) GetFeed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	feed := in.Feed
	if feed == "" {
		feed = FeedRecent
	}
	switch feed {
	case FeedRecent, FeedPopular, FeedFollowing:
		// valid
	default:
		return nil, models.NewValidationError("Invalid feed type")
	}
	if feed == FeedFollowing && in.CurrentUserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required for the following feed")
	}

	observability.FeedRequests.WithLabelValues(feed).Inc()

	offset := (in.Page - 1) * in.Limit

	var recipes []*models.Recipe
	var err error

	switch feed {
	case FeedFollowing:
		recipes, err = s.followingFeed(ctx, in.CurrentUserID, in.Limit, offset)
	default:
		recipes, err = s.rankedFeed(ctx, feed, in.Category, in.Limit, offset, in.CurrentUserID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.applyViewerFlags(ctx, in.CurrentUserID, recipes); err != nil {
		return nil, err
	}

	return &FeedPage{
		Recipes: emptyIfNil(recipes),
		Page:    in.Page,
		Limit:   in.Limit,
		HasMore: len(recipes) == in.Limit,
	}, nil
}

type SearchInput struct {
	Query         string
	Category      string
	Sort          string
	Page          int
	Limit         int
	CurrentUserID uint
}

func (s *FeedService) Search(ctx context.Context, in SearchInput) (*FeedPage, error) {
	if in.Query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	opts := repository.ListOptions{
		Sort:         in.Sort,
		CategorySlug: in.Category,
		Limit:        in.Limit,
		Offset:       (in.Page - 1) * in.Limit,
	}
	recipes, err := s.recipeRepo.Search(ctx, in.Query, opts, in.CurrentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.applyViewerFlags(ctx, in.CurrentUserID, recipes); err != nil {
		return nil, err
	}

	return &FeedPage{
		Recipes: emptyIfNil(recipes),
		Page:    in.Page,
		Limit:   in.Limit,
		HasMore: len(recipes) == in.Limit,
	}, nil
}

// followingFeed resolves the followee set first, then fetches their
// recipes in one IN query. An empty followee set short-circuits to an
// empty page without touching the recipes table.
func (s *FeedService) followingFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error) {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(followeeIDs) == 0 {
		return nil, nil
	}

	recipes, err := s.recipeRepo.ListByAuthors(ctx, followeeIDs, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// rankedFeed serves recent/popular pages. Anonymous pages are cached;
// per-viewer liked/saved flags are overlaid afterwards so cached entries
// stay viewer-neutral.
func (s *FeedService) rankedFeed(ctx context.Context, feed, category string, limit, offset int, currentUserID uint) ([]*models.Recipe, error) {
	opts := repository.ListOptions{
		Sort:         feed,
		CategorySlug: category,
		Limit:        limit,
		Offset:       offset,
	}

	var recipes []*models.Recipe
	page := offset/limit + 1

	if currentUserID == 0 {
		key := cache.FeedKey(feed, category, page, limit)
		err := cache.Aside(ctx, key, &recipes, cache.FeedTTL, func() error {
			var fetchErr error
			recipes, fetchErr = s.recipeRepo.List(ctx, opts, 0)
			return fetchErr
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return recipes, nil
	}

	recipes, err := s.recipeRepo.List(ctx, opts, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// applyViewerFlags overlays liked/saved for the viewer with one IN query
// per relation, run concurrently.
func (s *FeedService) applyViewerFlags(ctx context.Context, userID uint, recipes []*models.Recipe) error {
	if userID == 0 || len(recipes) == 0 {
		return nil
	}

	recipeIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
	}

	var likedIDs, savedIDs []uint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likedIDs, err = s.recipeRepo.GetLikedRecipeIDs(gctx, userID, recipeIDs)
		return err
	})
	g.Go(func() error {
		var err error
		savedIDs, err = s.recipeRepo.GetSavedRecipeIDs(gctx, userID, recipeIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.NewInternalError(err)
	}

	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	saved := make(map[uint]bool, len(savedIDs))
	for _, id := range savedIDs {
		saved[id] = true
	}
	for _, r := range recipes {
		r.Liked = liked[r.ID]
		r.Saved = saved[r.ID]
	}
	return nil
}

func emptyIfNil(recipes []*models.Recipe) []*models.Recipe {
	if recipes == nil {
		return []*models.Recipe{}
	}
	return recipes
}
