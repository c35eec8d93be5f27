//go:build integration

// Package containers starts throwaway backing services for integration tests.
// Every container is terminated when the calling test finishes.
package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v24.2.7"
)

// started registers termination of c with t and fails the test if startup failed.
func started[C testcontainers.Container](t *testing.T, c C, err error, service string) C {
	t.Helper()
	require.NoError(t, err, "start %s container", service)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	return c
}
