package client

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_DeliversInOrderWithoutDrops(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Close()

	const n = subscriptionBuffer * 4
	go func() {
		for i := 0; i < n; i++ {
			b.Publish(context.Background(), models.AuthEvent{Kind: models.EventTokenRefreshed, Session: &models.Session{ExpiresAt: int64(i)}})
		}
	}()

	for i := 0; i < n; i++ {
		select {
		case ev := <-sub.Events():
			require.Equal(t, int64(i), ev.Session.ExpiresAt)
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}
}

func TestBroadcaster_CloseIsIdempotentAndUnblocksPublish(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	require.Equal(t, 1, b.Len())

	for i := 0; i < subscriptionBuffer; i++ {
		b.Publish(context.Background(), models.AuthEvent{Kind: models.EventSignedIn})
	}

	done := make(chan struct{})
	go func() {
		b.Publish(context.Background(), models.AuthEvent{Kind: models.EventSignedOut})
		close(done)
	}()

	sub.Close()
	sub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish stayed blocked after close")
	}
	assert.Equal(t, 0, b.Len())

	select {
	case <-sub.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestBroadcaster_PublishHonorsContext(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Close()
	for i := 0; i < subscriptionBuffer; i++ {
		b.Publish(context.Background(), models.AuthEvent{Kind: models.EventSignedIn})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	b.Publish(ctx, models.AuthEvent{Kind: models.EventSignedOut})
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}
