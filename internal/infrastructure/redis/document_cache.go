package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signtusk/internal/config"
	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
)

const documentKeyPrefix = "signtusk:document:"

// documentCache is a read-through projection of document records. The
// Postgres store stays the source of truth; mutating usecases invalidate
// the key on every write.
type documentCache struct {
	client *RedisClient
	cfg    *config.Config
	logger *zap.Logger
}

func NewDocumentCache(client *RedisClient, cfg *config.Config, logger *zap.Logger) repository.DocumentCache {
	return &documentCache{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *documentCache) Get(ctx context.Context, id string) (*entity.Document, error) {
	data, err := c.client.Get(ctx, documentKeyPrefix+id)
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc entity.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		// A corrupt projection is treated as a miss, not an error.
		c.logger.Warn("Discarding unreadable cached document",
			zap.String("document_id", id),
			zap.Error(err),
		)
		_ = c.client.Del(ctx, documentKeyPrefix+id)
		return nil, nil
	}

	return &doc, nil
}

func (c *documentCache) Set(ctx context.Context, doc *entity.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, documentKeyPrefix+doc.ID, string(data), c.cfg.Redis.DocumentTTL)
}

func (c *documentCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, documentKeyPrefix+id)
}
