package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetBaseContext(ctx)
	// nolint:staticcheck // SA1012: nil selects the background context
	SetBaseContext(nil)
	t.Cleanup(func() { SetBaseContext(nil) })

	cancel()
	assert.NoError(t, serverBaseCtx.Err())
}

func TestJoinContexts(t *testing.T) {
	t.Run("either parent cancels", func(t *testing.T) {
		a, ac := context.WithCancel(context.Background())
		b, bc := context.WithCancel(context.Background())
		defer bc()
		j, cancelJ := joinContexts(a, b)
		defer cancelJ()
		ac()
		select {
		case <-j.Done():
		case <-time.After(500 * time.Millisecond):
			t.Fatal("joined context survived a canceled parent")
		}
	})

	t.Run("own cancel releases", func(t *testing.T) {
		j, cancelJ := joinContexts(context.Background(), context.Background())
		cancelJ()
		select {
		case <-j.Done():
		case <-time.After(500 * time.Millisecond):
			t.Fatal("joined context ignored its own cancel")
		}
	})
}

// Canceling the base context on shutdown must end open event streams and
// drop their hub subscriptions.
func TestBaseContextCancelEndsEventStreams(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(nil) })

	svc := newMock()
	r, stop := openStream(t, svc)
	defer stop()
	assert.Equal(t, []string{": subscribed"}, readFrame(t, r))
	require.Equal(t, 1, svc.hub.Subscribers())

	cancel()
	_, err := r.ReadString('\n')
	assert.Error(t, err)
	require.Eventually(t, func() bool { return svc.hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
