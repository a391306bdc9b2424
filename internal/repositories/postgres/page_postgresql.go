package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/submission-service/internal/cache"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

type PagePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPagePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PageRepository {
	return &PagePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (p *PagePostgreSQL) GetByID(ctx context.Context, id uint) (*models.AssessmentPage, error) {
	var page models.AssessmentPage
	err := p.cacheManager.Page.CacheOrExecute(ctx, cache.PageKey(id), &page, cache.PageCacheConfig.TTL, func() (interface{}, error) {
		var dbPage models.AssessmentPage
		if err := p.db.WithContext(ctx).First(&dbPage, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbPage, nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
