package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type userRow struct {
	ID              uuid.UUID      `db:"id"`
	Username        string         `db:"username"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	Role            string         `db:"role"`
	IsActive        bool           `db:"is_active"`
	LicenseVerified bool           `db:"license_verified"`
	LicenseNumber   sql.NullString `db:"license_number"`
	RegisteredName  sql.NullString `db:"registered_name"`
	Brokerage       sql.NullString `db:"brokerage"`
	VerifiedAt      sql.NullTime   `db:"verified_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

const userColumns = `id, username, email, password_hash, role, is_active, license_verified,
	license_number, registered_name, brokerage, verified_at, created_at, updated_at`

const insertUserSQL = `INSERT INTO users (` + userColumns + `)
VALUES (:id, :username, :email, :password_hash, :role, :is_active, :license_verified,
	:license_number, :registered_name, :brokerage, :verified_at, :created_at, :updated_at)`

const updateUserSQL = `UPDATE users SET
	username = :username, email = :email, password_hash = :password_hash, role = :role,
	is_active = :is_active, license_verified = :license_verified, license_number = :license_number,
	registered_name = :registered_name, brokerage = :brokerage, verified_at = :verified_at,
	updated_at = :updated_at
WHERE id = :id`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if _, err := s.db.NamedExecContext(ctx, insertUserSQL, fromUser(user)); err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, `WHERE lower(username) = lower($1)`, username)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		u, err := toUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	res, err := s.db.NamedExecContext(ctx, updateUserSQL, fromUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireOneRow(res, "update user")
}

// Delete removes the user row. Owned listings must be removed first.
func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireOneRow(res, "delete user")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func fromUser(u *models.User) userRow {
	row := userRow{
		ID:              uuid.UUID(u.ID),
		Username:        u.Username,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role.String(),
		IsActive:        u.IsActive,
		LicenseVerified: u.LicenseVerified,
		LicenseNumber:   nullString(u.LicenseNumber),
		RegisteredName:  nullString(u.RegisteredName),
		Brokerage:       nullString(u.Brokerage),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.VerifiedAt != nil {
		row.VerifiedAt = sql.NullTime{Time: *u.VerifiedAt, Valid: true}
	}
	return row
}

func toUser(row userRow) (*models.User, error) {
	role, err := id.ParseRole(row.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s has unknown role %q: %w", row.ID, row.Role, err)
	}
	u := &models.User{
		ID:              id.UserID(row.ID),
		Username:        row.Username,
		Email:           row.Email,
		PasswordHash:    row.PasswordHash,
		Role:            role,
		IsActive:        row.IsActive,
		LicenseVerified: row.LicenseVerified,
		LicenseNumber:   row.LicenseNumber.String,
		RegisteredName:  row.RegisteredName.String,
		Brokerage:       row.Brokerage.String,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.VerifiedAt.Valid {
		t := row.VerifiedAt.Time
		u.VerifiedAt = &t
	}
	return u, nil
}
