package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryUserStoreSuite) newUser(username, email string, offset time.Duration) *models.User {
	u, err := models.NewUser(id.NewUserID(), username, email, "$2a$10$hash", id.RoleGuest, s.now.Add(offset))
	s.Require().NoError(err)
	return u
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	u := s.newUser("jane", "jane@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("by username ignores case", func() {
		found, err := s.store.FindByUsername(s.ctx, "JANE")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("by email ignores case", func() {
		found, err := s.store.FindByEmail(s.ctx, "Jane@Example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("missing user", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByUsername(s.ctx, "nobody")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned copies are detached", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		found.Role = id.RoleAdmin
		again, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(id.RoleGuest, again.Role)
	})
}

func (s *InMemoryUserStoreSuite) TestUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("jane", "jane@example.com", 0)))

	s.ErrorIs(s.store.Create(s.ctx, s.newUser("Jane", "other@example.com", 0)), sentinel.ErrConflict)
	s.ErrorIs(s.store.Create(s.ctx, s.newUser("other", "JANE@example.com", 0)), sentinel.ErrConflict)

	bob := s.newUser("bob", "bob@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, bob))
	bob.Email = "jane@example.com"
	s.ErrorIs(s.store.Update(s.ctx, bob), sentinel.ErrConflict)
}

func (s *InMemoryUserStoreSuite) TestListUpdateDelete() {
	second := s.newUser("second", "second@example.com", time.Minute)
	first := s.newUser("first", "first@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, first))

	users, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(first.ID, users[0].ID)
	s.Equal(second.ID, users[1].ID)

	first.Role = id.RoleMember
	s.Require().NoError(s.store.Update(s.ctx, first))
	found, err := s.store.FindByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(id.RoleMember, found.Role)

	s.Require().NoError(s.store.Delete(s.ctx, first.ID))
	s.ErrorIs(s.store.Delete(s.ctx, first.ID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, first), sentinel.ErrNotFound)
}
