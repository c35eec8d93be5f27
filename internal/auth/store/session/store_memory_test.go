package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

type InMemorySessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
	ctx   context.Context
	now   time.Time
}

func TestInMemorySessionStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemorySessionStoreSuite))
}

func (s *InMemorySessionStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemorySessionStoreSuite) newSession(userID id.UserID, offset time.Duration) *models.Session {
	return &models.Session{
		ID:                id.NewSessionID(),
		UserID:            userID,
		Status:            models.SessionStatusActive,
		TokenJTI:          uuid.NewString(),
		DeviceDisplayName: "Chrome on Mac OS X",
		CreatedAt:         s.now.Add(offset),
		ExpiresAt:         s.now.Add(offset + 24*time.Hour),
	}
}

func (s *InMemorySessionStoreSuite) TestCreateAndFind() {
	sess := s.newSession(id.NewUserID(), 0)
	s.Require().NoError(s.store.Create(s.ctx, sess))
	s.ErrorIs(s.store.Create(s.ctx, sess), sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess, found)

	_, err = s.store.FindByID(s.ctx, id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySessionStoreSuite) TestRevokeSessionIfActive() {
	sess := s.newSession(id.NewUserID(), 0)
	s.Require().NoError(s.store.Create(s.ctx, sess))

	revokedAt := s.now.Add(time.Hour)
	s.Require().NoError(s.store.RevokeSessionIfActive(s.ctx, sess.ID, revokedAt))
	s.ErrorIs(s.store.RevokeSessionIfActive(s.ctx, sess.ID, revokedAt), ErrSessionRevoked)
	s.ErrorIs(s.store.RevokeSessionIfActive(s.ctx, id.NewSessionID(), revokedAt), sentinel.ErrNotFound)

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionStatusRevoked, found.Status)
	s.Require().NotNil(found.RevokedAt)
	s.True(revokedAt.Equal(*found.RevokedAt))
	s.False(found.IsUsable(revokedAt))
}

func (s *InMemorySessionStoreSuite) TestListAndDeleteByUser() {
	userID := id.NewUserID()
	older := s.newSession(userID, 0)
	newer := s.newSession(userID, time.Minute)
	other := s.newSession(id.NewUserID(), 0)
	for _, sess := range []*models.Session{older, newer, other} {
		s.Require().NoError(s.store.Create(s.ctx, sess))
	}

	list, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)

	n, err := s.store.DeleteSessionsByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(2, n)

	list, err = s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Empty(list)
	_, err = s.store.FindByID(s.ctx, other.ID)
	s.NoError(err)
}
