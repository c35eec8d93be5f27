//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// NewKafkaBroker returns the seed broker address of a single-node Redpanda
// cluster, which speaks the Kafka protocol.
func NewKafkaBroker(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := tcredpanda.Run(ctx, redpandaImage)
	cluster := started(t, c, err, "redpanda")

	broker, err := cluster.KafkaSeedBroker(ctx)
	require.NoError(t, err, "kafka seed broker")
	return broker
}
