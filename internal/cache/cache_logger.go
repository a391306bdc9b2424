package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func PageKey(pageID uint) string {
	return fmt.Sprintf("id:%d", pageID)
}

func MemberKey(courseID uint, userID, role string) string {
	return fmt.Sprintf("%d:%s:%s", courseID, userID, role)
}

func UserKey(userID string) string {
	return "id:" + userID
}

// InvalidateMembershipCache drops every cached membership answer for a course
func InvalidateMembershipCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeInvalidatePattern(ctx, cm.Member, fmt.Sprintf("%d:*", courseID))
}

// InvalidatePageCache drops the cached copy of a page
func InvalidatePageCache(ctx context.Context, cm *CacheManager, pageID uint) {
	SafeDelete(ctx, cm.Page, PageKey(pageID))
}
