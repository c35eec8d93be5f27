package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"presale/internal/listing/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

type PostgresStoreSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	raw, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.store = NewPostgres(sqlx.NewDb(raw, "postgres"))
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

var rowColumns = []string{
	"id", "owner_id", "project", "neighborhood", "bedrooms", "bathrooms", "sqft", "floor",
	"completion", "developer", "developer_initials", "original_price", "asking_price", "deposit_paid",
	"assignment_fee", "contract_date", "images", "floorplan", "views", "inquiries", "status", "is_verified",
	"lead_pool_status", "created_at", "updated_at",
}

func (s *PostgresStoreSuite) TestFindByID() {
	listingID := id.NewListingID()
	ownerID := id.NewUserID()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s.Run("maps a row to a listing", func() {
		rows := sqlmock.NewRows(rowColumns).AddRow(
			listingID.String(), ownerID.String(), "The Butterfly", "Downtown", 2, 2, 910, 31,
			"2027", "Westbank", "W.B.", 1250000, 1350000, 250000,
			"2.50", ts, "{a.jpg,b.jpg}", nil, 4, 1, "ACTIVE", true,
			"TIER_2", ts, ts,
		)
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(rows)

		l, err := s.store.FindByID(s.ctx, listingID)
		s.Require().NoError(err)
		s.Equal(listingID, l.ID)
		s.Equal(ownerID, l.OwnerID)
		s.Equal(int64(1350000), l.AskingPrice)
		s.Equal(2.5, l.AssignmentFee)
		s.Equal([]string{"a.jpg", "b.jpg"}, l.Images)
		s.Empty(l.Floorplan)
		s.Equal(models.TierTwo, l.LeadPoolTier)
	})

	s.Run("no rows is not found", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).
			WillReturnError(sql.ErrNoRows)
		_, err := s.store.FindByID(s.ctx, listingID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestList() {
	s.Run("pool filter adds a predicate", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("WHERE lead_pool_status <> 'NOT_IN_POOL' ORDER BY created_at DESC")).
			WillReturnRows(sqlmock.NewRows(rowColumns))
		listings, err := s.store.List(s.ctx, Filter{PoolOnly: true})
		s.Require().NoError(err)
		s.Empty(listings)
	})
}

func (s *PostgresStoreSuite) TestCreate() {
	l := &models.Listing{
		ID:           id.NewListingID(),
		OwnerID:      id.NewUserID(),
		AskingPrice:  800000,
		Status:       models.StatusActive,
		LeadPoolTier: models.TierNotInPool,
	}

	s.Run("inserts", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.NoError(s.store.Create(s.ctx, l))
	})

	s.Run("unique violation is a conflict", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
			WillReturnError(&pq.Error{Code: "23505"})
		s.ErrorIs(s.store.Create(s.ctx, l), sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestMutationsReportMissingRows() {
	l := &models.Listing{ID: id.NewListingID(), OwnerID: id.NewUserID()}

	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE listings SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.ErrorIs(s.store.Update(s.ctx, l), sentinel.ErrNotFound)

	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM listings WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.ErrorIs(s.store.Delete(s.ctx, l.ID), sentinel.ErrNotFound)

	s.mock.ExpectExec(regexp.QuoteMeta("SET views = views + 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.store.IncrementViews(s.ctx, l.ID))
}
