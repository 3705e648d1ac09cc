package service

import (
	"context"
	"fmt"
	"testing"

	"recipenest/internal/models"
	"recipenest/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn             func(context.Context, uint, uint) error
	unfollowFn           func(context.Context, uint, uint) error
	isFollowingFn        func(context.Context, uint, uint) (bool, error)
	getFollowersFn       func(context.Context, uint, int, int) ([]models.User, error)
	getFollowingFn       func(context.Context, uint, int, int) ([]models.User, error)
	getFolloweeIDsFn     func(context.Context, uint) ([]uint, error)
	getFollowedUserIDsFn func(context.Context, uint, []uint) ([]uint, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) GetFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.getFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) GetFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.getFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) GetFolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.getFolloweeIDsFn(ctx, followerID)
}
func (s *followRepoStub) GetFollowedUserIDs(ctx context.Context, followerID uint, userIDs []uint) ([]uint, error) {
	return s.getFollowedUserIDsFn(ctx, followerID, userIDs)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:             func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:           func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		getFollowersFn:       func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		getFollowingFn:       func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		getFolloweeIDsFn:     func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		getFollowedUserIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
	}
}

func recipePage(n int) []*models.Recipe {
	recipes := make([]*models.Recipe, n)
	for i := range recipes {
		recipes[i] = &models.Recipe{ID: uint(i + 1), Title: fmt.Sprintf("Recipe %d", i+1)}
	}
	return recipes
}

func TestGetFeedInvalidType(t *testing.T) {
	svc := NewFeedService(noopRecipeRepo(), noopFollowRepo())

	_, err := svc.GetFeed(context.Background(), FeedInput{Feed: "trending", Page: 1, Limit: 20})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestGetFeedFollowingRequiresAuth(t *testing.T) {
	svc := NewFeedService(noopRecipeRepo(), noopFollowRepo())

	_, err := svc.GetFeed(context.Background(), FeedInput{Feed: FeedFollowing, Page: 1, Limit: 20})
	assert.Equal(t, "UNAUTHORIZED", appErrorCode(t, err))
}

func TestGetFeedDefaultsToRecent(t *testing.T) {
	repo := noopRecipeRepo()
	var gotSort string
	repo.listFn = func(_ context.Context, opts repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		gotSort = opts.Sort
		return nil, nil
	}

	svc := NewFeedService(repo, noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedInput{Page: 1, Limit: 20, CurrentUserID: 1})
	require.NoError(t, err)
	assert.Equal(t, FeedRecent, gotSort)
	assert.NotNil(t, page.Recipes, "empty pages serialize as [] not null")
	assert.False(t, page.HasMore)
}

// A total divisible by the page size still reports has_more on the last
// full page. The trailing empty page is the accepted cost of skipping a
// count query.
func TestGetFeedHasMoreFullPage(t *testing.T) {
	repo := noopRecipeRepo()
	repo.listFn = func(_ context.Context, opts repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		if opts.Offset >= 20 {
			return nil, nil
		}
		return recipePage(opts.Limit), nil
	}

	svc := NewFeedService(repo, noopFollowRepo())

	page1, err := svc.GetFeed(context.Background(), FeedInput{Page: 1, Limit: 20, CurrentUserID: 1})
	require.NoError(t, err)
	assert.True(t, page1.HasMore)

	page2, err := svc.GetFeed(context.Background(), FeedInput{Page: 2, Limit: 20, CurrentUserID: 1})
	require.NoError(t, err)
	assert.Empty(t, page2.Recipes)
	assert.False(t, page2.HasMore)
}

func TestGetFeedPartialPageHasNoMore(t *testing.T) {
	repo := noopRecipeRepo()
	repo.listFn = func(_ context.Context, _ repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		return recipePage(7), nil
	}

	svc := NewFeedService(repo, noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedInput{Page: 1, Limit: 20, CurrentUserID: 1})
	require.NoError(t, err)
	assert.Len(t, page.Recipes, 7)
	assert.False(t, page.HasMore)
}

func TestFollowingFeedEmptyShortCircuit(t *testing.T) {
	repo := noopRecipeRepo()
	listCalled := false
	repo.listByAuthorsFn = func(_ context.Context, _ []uint, _, _ int) ([]*models.Recipe, error) {
		listCalled = true
		return nil, nil
	}
	follows := noopFollowRepo()

	svc := NewFeedService(repo, follows)
	page, err := svc.GetFeed(context.Background(), FeedInput{
		Feed: FeedFollowing, Page: 1, Limit: 20, CurrentUserID: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Recipes)
	assert.False(t, listCalled, "no followees means no recipe query")
}

func TestFollowingFeedUsesFolloweeSet(t *testing.T) {
	follows := noopFollowRepo()
	follows.getFolloweeIDsFn = func(_ context.Context, _ uint) ([]uint, error) {
		return []uint{3, 5}, nil
	}
	repo := noopRecipeRepo()
	var gotAuthors []uint
	repo.listByAuthorsFn = func(_ context.Context, authorIDs []uint, _, _ int) ([]*models.Recipe, error) {
		gotAuthors = authorIDs
		return recipePage(2), nil
	}

	svc := NewFeedService(repo, follows)
	page, err := svc.GetFeed(context.Background(), FeedInput{
		Feed: FeedFollowing, Page: 1, Limit: 20, CurrentUserID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 5}, gotAuthors)
	assert.Len(t, page.Recipes, 2)
}

func TestViewerFlagsOverlay(t *testing.T) {
	repo := noopRecipeRepo()
	repo.listFn = func(_ context.Context, _ repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		return recipePage(3), nil
	}
	repo.getLikedRecipeIDsFn = func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
		return []uint{1, 3}, nil
	}
	repo.getSavedRecipeIDsFn = func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
		return []uint{2}, nil
	}

	svc := NewFeedService(repo, noopFollowRepo())
	page, err := svc.GetFeed(context.Background(), FeedInput{Page: 1, Limit: 20, CurrentUserID: 9})
	require.NoError(t, err)

	require.Len(t, page.Recipes, 3)
	assert.True(t, page.Recipes[0].Liked)
	assert.False(t, page.Recipes[0].Saved)
	assert.False(t, page.Recipes[1].Liked)
	assert.True(t, page.Recipes[1].Saved)
	assert.True(t, page.Recipes[2].Liked)
}

func TestViewerFlagsSkippedForAnonymous(t *testing.T) {
	repo := noopRecipeRepo()
	repo.listFn = func(_ context.Context, _ repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		return recipePage(2), nil
	}
	overlayCalled := false
	repo.getLikedRecipeIDsFn = func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
		overlayCalled = true
		return nil, nil
	}

	svc := NewFeedService(repo, noopFollowRepo())
	_, err := svc.GetFeed(context.Background(), FeedInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.False(t, overlayCalled)
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := NewFeedService(noopRecipeRepo(), noopFollowRepo())

	_, err := svc.Search(context.Background(), SearchInput{Page: 1, Limit: 20})
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestSearchPassesFilters(t *testing.T) {
	repo := noopRecipeRepo()
	var gotQuery string
	var gotOpts repository.ListOptions
	repo.searchFn = func(_ context.Context, query string, opts repository.ListOptions, _ uint) ([]*models.Recipe, error) {
		gotQuery = query
		gotOpts = opts
		return recipePage(3), nil
	}

	svc := NewFeedService(repo, noopFollowRepo())
	page, err := svc.Search(context.Background(), SearchInput{
		Query: "soup", Category: "dinner", Sort: "popular", Page: 2, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "soup", gotQuery)
	assert.Equal(t, repository.ListOptions{Sort: "popular", CategorySlug: "dinner", Limit: 10, Offset: 10}, gotOpts)
	assert.False(t, page.HasMore)
}
