package clientmqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyUnbounded(t *testing.T) {
	p := RetryPolicy{Interval: time.Second}

	assert.True(t, p.Next(1))
	assert.True(t, p.Next(1000000))
}

func TestRetryPolicyBounded(t *testing.T) {
	p := RetryPolicy{Interval: time.Second, MaxAttempts: 3}

	assert.True(t, p.Next(1))
	assert.True(t, p.Next(3))
	assert.False(t, p.Next(4))
}

func TestRetryPolicyWait(t *testing.T) {
	p := RetryPolicy{Interval: 10 * time.Millisecond}

	start := time.Now()
	err := p.Wait(context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestRetryPolicyWaitCancelled(t *testing.T) {
	p := RetryPolicy{Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
