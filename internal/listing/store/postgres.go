package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"presale/internal/listing/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

// PostgresStore persists listings in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgres constructs a PostgreSQL-backed listing store.
func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type listingRow struct {
	ID                uuid.UUID      `db:"id"`
	OwnerID           uuid.UUID      `db:"owner_id"`
	Project           string         `db:"project"`
	Neighborhood      string         `db:"neighborhood"`
	Bedrooms          int            `db:"bedrooms"`
	Bathrooms         int            `db:"bathrooms"`
	Sqft              int            `db:"sqft"`
	Floor             int            `db:"floor"`
	Completion        string         `db:"completion"`
	Developer         string         `db:"developer"`
	DeveloperInitials string         `db:"developer_initials"`
	OriginalPrice     int64          `db:"original_price"`
	AskingPrice       int64          `db:"asking_price"`
	DepositPaid       int64          `db:"deposit_paid"`
	AssignmentFee     float64        `db:"assignment_fee"`
	ContractDate      time.Time      `db:"contract_date"`
	Images            pq.StringArray `db:"images"`
	Floorplan         sql.NullString `db:"floorplan"`
	Views             int            `db:"views"`
	Inquiries         int            `db:"inquiries"`
	Status            string         `db:"status"`
	IsVerified        bool           `db:"is_verified"`
	LeadPoolStatus    string         `db:"lead_pool_status"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

const listingColumns = `id, owner_id, project, neighborhood, bedrooms, bathrooms, sqft, floor,
	completion, developer, developer_initials, original_price, asking_price, deposit_paid,
	assignment_fee, contract_date, images, floorplan, views, inquiries, status, is_verified,
	lead_pool_status, created_at, updated_at`

const insertListingSQL = `INSERT INTO listings (` + listingColumns + `)
VALUES (:id, :owner_id, :project, :neighborhood, :bedrooms, :bathrooms, :sqft, :floor,
	:completion, :developer, :developer_initials, :original_price, :asking_price, :deposit_paid,
	:assignment_fee, :contract_date, :images, :floorplan, :views, :inquiries, :status, :is_verified,
	:lead_pool_status, :created_at, :updated_at)`

const updateListingSQL = `UPDATE listings SET
	project = :project, neighborhood = :neighborhood, bedrooms = :bedrooms, bathrooms = :bathrooms,
	sqft = :sqft, floor = :floor, completion = :completion, developer = :developer,
	developer_initials = :developer_initials, original_price = :original_price,
	asking_price = :asking_price, deposit_paid = :deposit_paid, assignment_fee = :assignment_fee,
	contract_date = :contract_date, images = :images, floorplan = :floorplan, status = :status,
	is_verified = :is_verified, lead_pool_status = :lead_pool_status, updated_at = :updated_at
WHERE id = :id`

func (s *PostgresStore) Create(ctx context.Context, listing *models.Listing) error {
	if _, err := s.db.NamedExecContext(ctx, insertListingSQL, fromListing(listing)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	var row listingRow
	err := s.db.GetContext(ctx, &row, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, uuid.UUID(listingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return toListing(row), nil
}

// List returns matching listings, newest first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	if filter.PoolOnly {
		query += ` WHERE lead_pool_status <> 'NOT_IN_POOL'`
	}
	query += ` ORDER BY created_at DESC, id`

	var rows []listingRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	listings := make([]*models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, toListing(row))
	}
	return listings, nil
}

func (s *PostgresStore) Update(ctx context.Context, listing *models.Listing) error {
	res, err := s.db.NamedExecContext(ctx, updateListingSQL, fromListing(listing))
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return requireOneRow(res, "update listing")
}

func (s *PostgresStore) Delete(ctx context.Context, listingID id.ListingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, uuid.UUID(listingID))
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return requireOneRow(res, "delete listing")
}

// DeleteByOwner removes every listing owned by ownerID and returns how many went.
func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE owner_id = $1`, uuid.UUID(ownerID))
	if err != nil {
		return 0, fmt.Errorf("delete listings by owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete listings by owner: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) IncrementViews(ctx context.Context, listingID id.ListingID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE listings SET views = views + 1 WHERE id = $1`, uuid.UUID(listingID))
	if err != nil {
		return fmt.Errorf("increment listing views: %w", err)
	}
	return requireOneRow(res, "increment listing views")
}

func requireOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func fromListing(l *models.Listing) listingRow {
	images := pq.StringArray(l.Images)
	if images == nil {
		images = pq.StringArray{}
	}
	return listingRow{
		ID:                uuid.UUID(l.ID),
		OwnerID:           uuid.UUID(l.OwnerID),
		Project:           l.Project,
		Neighborhood:      l.Neighborhood,
		Bedrooms:          l.Bedrooms,
		Bathrooms:         l.Bathrooms,
		Sqft:              l.Sqft,
		Floor:             l.Floor,
		Completion:        l.Completion,
		Developer:         l.Developer,
		DeveloperInitials: l.DeveloperInitials,
		OriginalPrice:     l.OriginalPrice,
		AskingPrice:       l.AskingPrice,
		DepositPaid:       l.DepositPaid,
		AssignmentFee:     l.AssignmentFee,
		ContractDate:      l.ContractDate,
		Images:            images,
		Floorplan:         sql.NullString{String: l.Floorplan, Valid: l.Floorplan != ""},
		Views:             l.Views,
		Inquiries:         l.Inquiries,
		Status:            string(l.Status),
		IsVerified:        l.IsVerified,
		LeadPoolStatus:    string(l.LeadPoolTier),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toListing(row listingRow) *models.Listing {
	images := []string(row.Images)
	if images == nil {
		images = []string{}
	}
	return &models.Listing{
		ID:                id.ListingID(row.ID),
		OwnerID:           id.UserID(row.OwnerID),
		Project:           row.Project,
		Neighborhood:      row.Neighborhood,
		Bedrooms:          row.Bedrooms,
		Bathrooms:         row.Bathrooms,
		Sqft:              row.Sqft,
		Floor:             row.Floor,
		Completion:        row.Completion,
		Developer:         row.Developer,
		DeveloperInitials: row.DeveloperInitials,
		OriginalPrice:     row.OriginalPrice,
		AskingPrice:       row.AskingPrice,
		DepositPaid:       row.DepositPaid,
		AssignmentFee:     row.AssignmentFee,
		ContractDate:      row.ContractDate,
		Images:            images,
		Floorplan:         row.Floorplan.String,
		Views:             row.Views,
		Inquiries:         row.Inquiries,
		Status:            models.Status(row.Status),
		IsVerified:        row.IsVerified,
		LeadPoolTier:      models.LeadPoolTier(row.LeadPoolStatus),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
