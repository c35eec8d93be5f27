//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgresDSN returns the DSN of an empty "presale" database.
func NewPostgresDSN(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	// Postgres logs readiness twice: once for the init run, once for the real server.
	ready := wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(time.Minute)
	c, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("presale"),
		tcpostgres.WithUsername("presale"),
		tcpostgres.WithPassword("presale"),
		testcontainers.WithWaitStrategy(ready),
	)
	pg := started(t, c, err, "postgres")

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres dsn")
	return dsn
}
