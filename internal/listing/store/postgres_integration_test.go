//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"presale/internal/listing/models"
	"presale/internal/listing/store"
	"presale/internal/platform/postgres"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
	"presale/pkg/testutil/containers"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	store   *store.PostgresStore
	ownerID id.UserID
}

func TestPostgresIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	ctx := context.Background()
	db, err := postgres.Open(ctx, containers.NewPostgresDSN(s.T()))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	_, err = postgres.Migrate(ctx, db)
	s.Require().NoError(err)

	s.ownerID = id.NewUserID()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, 'owner', 'owner@example.com', 'x')`,
		s.ownerID.String())
	s.Require().NoError(err)
	s.store = store.NewPostgres(db)
}

func (s *PostgresIntegrationSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	l, err := models.NewListing(id.NewListingID(), s.ownerID, models.Fields{
		Project:           "Integration Tower",
		Neighborhood:      "Mount Pleasant",
		Bedrooms:          1,
		Bathrooms:         1,
		Sqft:              600,
		Floor:             12,
		Completion:        "2028",
		Developer:         "Intracorp",
		DeveloperInitials: "I.C.",
		OriginalPrice:     650000,
		AskingPrice:       720000,
		DepositPaid:       130000,
		AssignmentFee:     1.75,
		ContractDate:      now.AddDate(-1, 0, 0),
		Images:            []string{"x.jpg"},
		LeadPoolTier:      models.TierOne,
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, l))

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(l.Project, found.Project)
	s.Equal(1.75, found.AssignmentFee)
	s.Equal([]string{"x.jpg"}, found.Images)

	pool, err := s.store.List(ctx, store.Filter{PoolOnly: true})
	s.Require().NoError(err)
	s.NotEmpty(pool)

	s.Require().NoError(s.store.Delete(ctx, l.ID))
	_, err = s.store.FindByID(ctx, l.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
