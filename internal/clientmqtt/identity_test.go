package clientmqtt

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIDFromHardwareAddr(t *testing.T) {
	hw, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)

	id := ClientID("esp32-client-", hw)

	assert.Equal(t, "esp32-client-aa:bb:cc:dd:ee:ff", id)
}

func TestClientIDUniqueAcrossDevices(t *testing.T) {
	hw1, err := net.ParseMAC("aa:bb:cc:dd:ee:01")
	require.NoError(t, err)
	hw2, err := net.ParseMAC("aa:bb:cc:dd:ee:02")
	require.NoError(t, err)

	assert.NotEqual(t, ClientID("esp32-client-", hw1), ClientID("esp32-client-", hw2))
}

func TestClientIDWithoutHardwareAddr(t *testing.T) {
	id1 := ClientID("esp32-client-", nil)
	id2 := ClientID("esp32-client-", nil)

	assert.Contains(t, id1, "esp32-client-")
	assert.NotEqual(t, id1, id2, "два узла без MAC не должны столкнуться на брокере")
}
