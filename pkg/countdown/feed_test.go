package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_Publish(t *testing.T) {
	t.Parallel()
	f := newFeed(4)
	defer f.close()

	a := f.subscribe(context.Background())
	b := f.subscribe(context.Background())

	f.publish(Update{At: time.Unix(1, 0)})

	for _, sub := range []Subscriber{a, b} {
		select {
		case u := <-sub.Receive():
			assert.Equal(t, time.Unix(1, 0), u.At)
		case <-time.After(time.Second):
			t.Fatal("update not delivered")
		}
	}
}

func TestFeed_DropsSlowSubscriber(t *testing.T) {
	t.Parallel()
	f := newFeed(1)
	defer f.close()

	sub := f.subscribe(context.Background())
	f.publish(Update{At: time.Unix(1, 0)})
	f.publish(Update{At: time.Unix(2, 0)}) // buffer full: subscriber is removed

	u, ok := <-sub.Receive()
	require.True(t, ok)
	assert.Equal(t, time.Unix(1, 0), u.At)

	assert.Eventually(t, func() bool {
		_, ok := <-sub.Receive()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFeed_ContextCancel(t *testing.T) {
	t.Parallel()
	f := newFeed(1)
	defer f.close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := f.subscribe(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		_, ok := <-sub.Receive()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFeed_Close(t *testing.T) {
	t.Parallel()
	f := newFeed(1)
	sub := f.subscribe(context.Background())

	f.close()
	f.close()

	_, ok := <-sub.Receive()
	assert.False(t, ok)

	late := f.subscribe(context.Background())
	_, ok = <-late.Receive()
	assert.False(t, ok, "subscribing after close yields a closed subscriber")

	f.publish(Update{}) // no-op
	require.NoError(t, sub.Close())
}
