package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix = "profile:%s"
	RecipeKeyPrefix  = "recipe:%d"
	FeedKeyPrefix    = "feed:%s:%s:%d:%d"
	CategoriesKey    = "categories"
)

const (
	ProfileTTL = 5 * time.Minute
	RecipeTTL  = 10 * time.Minute
	// Feed pages are never explicitly invalidated; staleness is bounded
	// by this TTL instead.
	FeedTTL       = 1 * time.Minute
	CategoriesTTL = 1 * time.Hour
)

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

// FeedKey identifies one anonymous feed page. Feeds for authenticated
// viewers are never cached because liked/saved flags are per viewer.
func FeedKey(feed, category string, page, limit int) string {
	if category == "" {
		category = "-"
	}
	return fmt.Sprintf(FeedKeyPrefix, feed, category, page, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
