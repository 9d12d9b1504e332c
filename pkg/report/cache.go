package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inflammetry/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Cache keeps recent analysis reports in Redis so repeated fetches skip
// the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return fmt.Sprintf("report:%s", id)
}

func (c *Cache) Put(ctx context.Context, rep *models.AnalysisReport) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(rep.ID), data, c.ttl).Err()
}

// Get returns the cached report, or nil on a cache miss.
func (c *Cache) Get(ctx context.Context, id string) (*models.AnalysisReport, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rep models.AnalysisReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
