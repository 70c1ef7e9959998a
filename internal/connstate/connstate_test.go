package connstate

import (
	"testing"

	"vtms/internal/config"
	"vtms/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "network-joining", NetworkJoining.String())
	assert.Equal(t, "network-joined", NetworkJoined.String())
	assert.Equal(t, "bus-connecting", BusConnecting.String())
	assert.Equal(t, "bus-connected", BusConnected.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestTrackerTransitions(t *testing.T) {
	log, err := logger.NewLogger(config.LogConf{Level: "error"})
	require.NoError(t, err)

	tracker := NewTracker(log)
	assert.Equal(t, Disconnected, tracker.Get())

	tracker.Set(NetworkJoining)
	tracker.Set(NetworkJoined)
	tracker.Set(BusConnecting)
	tracker.Set(BusConnected)
	assert.Equal(t, BusConnected, tracker.Get())

	// Потеря сессии возвращает в BusConnecting.
	tracker.Set(BusConnecting)
	assert.Equal(t, BusConnecting, tracker.Get())
}
