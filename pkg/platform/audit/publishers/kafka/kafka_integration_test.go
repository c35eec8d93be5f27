//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "presale/pkg/domain"
	audit "presale/pkg/platform/audit"
	"presale/pkg/testutil/containers"
)

func TestPublisher_RoundTripThroughBroker(t *testing.T) {
	broker := containers.NewKafkaBroker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := NewClient([]string{broker})
	require.NoError(t, err)
	defer client.Close()

	pub := New(client, "presale.audit", nil)
	require.NoError(t, EnsureTopics(ctx, client, 1, 1, pub.Topics()...))
	require.NoError(t, EnsureTopics(ctx, client, 1, 1, pub.Topics()...), "creating existing topics is not an error")

	userID := id.NewUserID()
	require.NoError(t, pub.Append(ctx, audit.Event{
		UserID:    userID,
		Action:    string(audit.EventUserPromoted),
		RequestID: "req-1",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(pub.Topic(audit.CategoryCompliance)),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollRecords(ctx, 1)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, userID.String(), string(records[0].Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, string(audit.EventUserPromoted), got.Action)
	assert.Equal(t, "req-1", got.RequestID)
}
