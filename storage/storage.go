package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerbot/pkg/models"
)

type IStorage interface {
	Session() ISessionStorage
	Close()
	GetPool() *pgxpool.Pool
}

type ISessionStorage interface {
	Upsert(ctx context.Context, sess *models.Session) (*models.Session, error)
	Get(ctx context.Context, teleID int64) (*models.Session, error)
	Delete(ctx context.Context, teleID int64) error
}

type IMetadataCache interface {
	GetMetadata(ctx context.Context) (*models.RegisterMetadata, bool, error)
	SetMetadata(ctx context.Context, md *models.RegisterMetadata, ttl time.Duration) error
	Close() error
}
