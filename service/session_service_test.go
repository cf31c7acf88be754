package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
)

type memSessions struct {
	m map[int64]*models.Session
}

func (s *memSessions) Upsert(ctx context.Context, sess *models.Session) (*models.Session, error) {
	cp := *sess
	s.m[sess.TelegramID] = &cp
	return &cp, nil
}

func (s *memSessions) Get(ctx context.Context, teleID int64) (*models.Session, error) {
	return s.m[teleID], nil
}

func (s *memSessions) Delete(ctx context.Context, teleID int64) error {
	delete(s.m, teleID)
	return nil
}

type fakeAuth struct {
	got models.Credentials
	err error
}

func (a *fakeAuth) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	a.got = creds
	if a.err != nil {
		return nil, a.err
	}
	return &models.Session{PartnerID: 11, PhoneNumber: creds.PhoneNumber, AccessToken: "tok"}, nil
}

func TestSessionService_Lifecycle(t *testing.T) {
	stg := &memSessions{m: map[int64]*models.Session{}}
	auth := &fakeAuth{}
	svc := NewSessionService(stg, auth, logger.NewNop())
	ctx := context.Background()

	sess, err := svc.SignIn(ctx, 100, " 0901234567 ", "secret")
	require.NoError(t, err)
	require.Equal(t, int64(100), sess.TelegramID)
	require.True(t, sess.Authorized())
	require.Equal(t, "partner", auth.got.Role)
	require.Equal(t, "0901234567", auth.got.PhoneNumber)

	got, err := svc.Get(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "tok", got.AccessToken)

	require.NoError(t, svc.SignOut(ctx, 100))
	got, err = svc.Get(ctx, 100)
	require.NoError(t, err)
	require.Nil(t, got)
	require.False(t, got.Authorized())
}

func TestSessionService_SignInErrors(t *testing.T) {
	stg := &memSessions{m: map[int64]*models.Session{}}
	svc := NewSessionService(stg, &fakeAuth{err: errors.New("bad password")}, logger.NewNop())

	_, err := svc.SignIn(context.Background(), 1, "", "x")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), 1, "0901234567", "x")
	require.Error(t, err)
	require.Empty(t, stg.m)
}
