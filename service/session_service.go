package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/storage"
)

var ErrInvalidCredentials = errors.New("phone number and password are required")

type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
}

// SessionService owns the partner credential lifecycle: a session exists
// from SignIn until SignOut and is handed explicitly to every API call.
type SessionService interface {
	SignIn(ctx context.Context, teleID int64, phone, password string) (*models.Session, error)
	SignOut(ctx context.Context, teleID int64) error
	Get(ctx context.Context, teleID int64) (*models.Session, error)
}

type sessionService struct {
	stg  storage.ISessionStorage
	auth Authenticator
	log  logger.ILogger
}

func NewSessionService(stg storage.ISessionStorage, auth Authenticator, log logger.ILogger) SessionService {
	return &sessionService{
		stg:  stg,
		auth: auth,
		log:  log,
	}
}

func (s *sessionService) SignIn(ctx context.Context, teleID int64, phone, password string) (*models.Session, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.auth.Login(ctx, models.Credentials{PhoneNumber: phone, Password: password, Role: "partner"})
	if err != nil {
		s.log.Warning("partner sign in failed", logger.Int64("telegram_id", teleID), logger.Error(err))
		return nil, err
	}
	sess.TelegramID = teleID

	saved, err := s.stg.Upsert(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.log.Info("partner signed in", logger.Int64("telegram_id", teleID), logger.Int64("partner_id", saved.PartnerID))
	return saved, nil
}

func (s *sessionService) SignOut(ctx context.Context, teleID int64) error {
	if err := s.stg.Delete(ctx, teleID); err != nil {
		return err
	}
	s.log.Info("partner signed out", logger.Int64("telegram_id", teleID))
	return nil
}

// Get returns nil without error when the user has not signed in.
func (s *sessionService) Get(ctx context.Context, teleID int64) (*models.Session, error) {
	return s.stg.Get(ctx, teleID)
}
