package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/storage"
)

type sessionRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSessionRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISessionStorage {
	return &sessionRepo{db: db, log: log}
}

func (r *sessionRepo) Upsert(ctx context.Context, sess *models.Session) (*models.Session, error) {
	var out models.Session
	query := `
		INSERT INTO partner_sessions (telegram_id, partner_id, phone_number, access_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET partner_id = EXCLUDED.partner_id,
			phone_number = EXCLUDED.phone_number,
			access_token = EXCLUDED.access_token,
			updated_at = NOW()
		RETURNING telegram_id, partner_id, phone_number, access_token, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, sess.TelegramID, sess.PartnerID, sess.PhoneNumber, sess.AccessToken).Scan(
		&out.TelegramID, &out.PartnerID, &out.PhoneNumber, &out.AccessToken, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to upsert partner session", logger.Int64("telegram_id", sess.TelegramID), logger.Error(err))
		return nil, errors.Wrap(err, "upsert partner session")
	}
	return &out, nil
}

func (r *sessionRepo) Get(ctx context.Context, teleID int64) (*models.Session, error) {
	var s models.Session
	query := `SELECT telegram_id, partner_id, phone_number, access_token, created_at, updated_at FROM partner_sessions WHERE telegram_id = $1`
	err := r.db.QueryRow(ctx, query, teleID).Scan(
		&s.TelegramID, &s.PartnerID, &s.PhoneNumber, &s.AccessToken, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get partner session", logger.Error(err))
		return nil, errors.Wrap(err, "get partner session")
	}
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, teleID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM partner_sessions WHERE telegram_id = $1`, teleID)
	if err != nil {
		return errors.Wrap(err, "delete partner session")
	}
	return nil
}
