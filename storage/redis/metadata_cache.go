package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"partnerbot/pkg/models"
	"partnerbot/storage"
)

const metadataKey = "partnerbot:register_car_metadata"

type MetadataCache struct {
	c *goredis.Client
}

func New(addr, password string) storage.IMetadataCache {
	return &MetadataCache{
		c: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (m *MetadataCache) GetMetadata(ctx context.Context) (*models.RegisterMetadata, bool, error) {
	val, err := m.c.Get(ctx, metadataKey).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	var md models.RegisterMetadata
	if err := json.Unmarshal(val, &md); err != nil {
		return nil, false, errors.Wrap(err, "decode cached metadata")
	}
	return &md, true, nil
}

func (m *MetadataCache) SetMetadata(ctx context.Context, md *models.RegisterMetadata, ttl time.Duration) error {
	b, err := json.Marshal(md)
	if err != nil {
		return errors.Wrap(err, "encode metadata")
	}
	if err := m.c.Set(ctx, metadataKey, b, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (m *MetadataCache) Close() error {
	return m.c.Close()
}
