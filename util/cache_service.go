// util/cache_service.go

package util

import (
	"context"

	"github.com/accesskit/grantd/db"
	"github.com/accesskit/grantd/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetGrant(ctx context.Context, grantID string) (*model.Grant, error) {
	return db.GetCachedGrant(ctx, grantID)
}

func (c *CacheService) SetGrant(ctx context.Context, grant *model.Grant) error {
	return db.CacheGrant(ctx, grant)
}

func (c *CacheService) DeleteGrant(ctx context.Context, grantID string) error {
	return db.DeleteCachedGrant(ctx, grantID)
}
