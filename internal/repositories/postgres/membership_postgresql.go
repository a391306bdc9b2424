package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/submission-service/internal/cache"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

type MembershipPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMembershipPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.MembershipRepository {
	return &MembershipPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (m *MembershipPostgreSQL) IsEnrolled(ctx context.Context, courseID uint, userID string) (bool, error) {
	return m.hasRole(ctx, courseID, userID, models.MemberLearner)
}

func (m *MembershipPostgreSQL) IsMentor(ctx context.Context, courseID uint, userID string) (bool, error) {
	return m.hasRole(ctx, courseID, userID, models.MemberMentor)
}

func (m *MembershipPostgreSQL) hasRole(ctx context.Context, courseID uint, userID string, role models.MemberRole) (bool, error) {
	var member bool
	key := cache.MemberKey(courseID, userID, string(role))
	err := m.cacheManager.Member.CacheOrExecute(ctx, key, &member, cache.MemberCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		err := m.db.WithContext(ctx).
			Model(&models.CourseMember{}).
			Where("course_id = ? AND user_id = ? AND role = ?", courseID, userID, role).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check course membership: %w", err)
		}
		return count > 0, nil
	})
	return member, err
}
