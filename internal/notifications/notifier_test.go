package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speaksfer/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.Notify(context.Background(), 1, models.Notification{Type: models.EventNewFollower}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishUser(context.Background(), 1, "x"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := parseUserChannel("notifications:user:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"notifications:user:", "notifications:user:0", "notifications:user:x", "chat:conv:1"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestNotifier_SubscriberReceivesAndStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type msg struct{ channel, payload string }
	got := make(chan msg, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- msg{channel, payload}
	}))

	event := models.Notification{Type: models.EventNewFollower, ActorID: 7, Actor: "neo", CreatedAt: time.Now().UTC()}
	require.NoError(t, n.Notify(context.Background(), 3, event))

	select {
	case m := <-got:
		assert.Equal(t, UserChannel(3), m.channel)
		var decoded models.Notification
		require.NoError(t, json.Unmarshal([]byte(m.payload), &decoded))
		assert.Equal(t, models.EventNewFollower, decoded.Type)
		assert.Equal(t, uint(7), decoded.ActorID)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, n.PublishUser(context.Background(), 3, "after-cancel"))
	assert.Never(t, func() bool { return len(got) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
