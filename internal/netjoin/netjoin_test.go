package netjoin

import (
	"context"
	"net"
	"testing"
	"time"

	"vtms/internal/config"
	"vtms/internal/connstate"
	"vtms/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJoiner(t *testing.T, ifaces func() ([]net.Interface, error)) *Joiner {
	t.Helper()
	log, err := logger.NewLogger(config.LogConf{Level: "error"})
	require.NoError(t, err)

	j := NewJoiner(log, connstate.NewTracker(log), "", time.Millisecond)
	j.interfaces = ifaces
	return j
}

func TestJoinBlocksUntilCancelled(t *testing.T) {
	j := newTestJoiner(t, func() ([]net.Interface, error) {
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := j.Join(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProbeSkipsLoopbackAndDownInterfaces(t *testing.T) {
	j := newTestJoiner(t, func() ([]net.Interface, error) {
		return []net.Interface{
			{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			{Index: 2, Name: "eth0", Flags: 0},
		}, nil
	})

	h, err := j.probe()

	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestProbeFiltersByName(t *testing.T) {
	j := newTestJoiner(t, func() ([]net.Interface, error) {
		return []net.Interface{
			{Index: 2, Name: "eth0", Flags: net.FlagUp},
		}, nil
	})
	j.ifaceName = "wlan0"

	h, err := j.probe()

	require.NoError(t, err)
	assert.Nil(t, h)
}
