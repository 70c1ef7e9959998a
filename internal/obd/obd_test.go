package obd

import (
	"fmt"
	"sync"
	"testing"

	"vtms/internal/config"
	"vtms/internal/logger"
	"vtms/internal/topics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(config.LogConf{Level: "error"})
	require.NoError(t, err)
	return log
}

func mustCommand(t *testing.T, name string) Command {
	t.Helper()
	cmd, ok := CommandByName(name)
	require.True(t, ok, "команда %s должна быть в таблице", name)
	return cmd
}

func TestDecoders(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want float64
	}{
		{name: "RPM", data: []byte{0x1A, 0xF8}, want: 1726.0},
		{name: "SPEED", data: []byte{0x64}, want: 100.0},
		{name: "COOLANT_TEMP", data: []byte{0x7B}, want: 83.0},
		{name: "ENGINE_LOAD", data: []byte{0xFF}, want: 100.0},
		{name: "MAF", data: []byte{0x01, 0xF4}, want: 5.0},
		{name: "CONTROL_MODULE_VOLTAGE", data: []byte{0x33, 0x85}, want: 13.189},
		{name: "TIMING_ADVANCE", data: []byte{0x80}, want: 0.0},
		{name: "FUEL_PRESSURE", data: []byte{0x64}, want: 300.0},
		{name: "RUN_TIME", data: []byte{0x01, 0x2C}, want: 300.0},
		{name: "OIL_TEMP", data: []byte{0x28}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := mustCommand(t, tt.name)

			v, err := cmd.Decode(tt.data)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 0.001)
		})
	}
}

func TestDecoderRejectsShortData(t *testing.T) {
	cmd := mustCommand(t, "RPM")

	_, err := cmd.Decode([]byte{0x1A})

	assert.Error(t, err)
}

func TestCommandByNameUnknown(t *testing.T) {
	_, ok := CommandByName("FLUX_CAPACITOR")

	assert.False(t, ok)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		mode    byte
		pid     byte
		want    []byte
		wantErr bool
	}{
		{
			name: "plain response",
			raw:  "410C1AF8\r\r>",
			mode: 0x01, pid: 0x0C,
			want: []byte{0x1A, 0xF8},
		},
		{
			name: "response with spaces",
			raw:  "41 0C 1A F8\r\r>",
			mode: 0x01, pid: 0x0C,
			want: []byte{0x1A, 0xF8},
		},
		{
			name: "searching prefix line",
			raw:  "SEARCHING...\r410D64\r\r>",
			mode: 0x01, pid: 0x0D,
			want: []byte{0x64},
		},
		{
			name: "no data",
			raw:  "NO DATA\r\r>",
			mode: 0x01, pid: 0x0C,
			wantErr: true,
		},
		{
			name: "unable to connect",
			raw:  "UNABLE TO CONNECT\r\r>",
			mode: 0x01, pid: 0x00,
			wantErr: true,
		},
		{
			name: "foreign response ignored",
			raw:  "410D64\r\r>",
			mode: 0x01, pid: 0x0C,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := parseResponse(tt.raw, tt.mode, tt.pid)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestSupportedPIDs(t *testing.T) {
	// 0xBE1FA813 - классическая карта поддержки PID 01-20.
	pids := supportedPIDs([]byte{0xBE, 0x1F, 0xA8, 0x13}, 0x00)

	assert.Contains(t, pids, byte(0x0C), "RPM поддерживается")
	assert.Contains(t, pids, byte(0x0D), "SPEED поддерживается")
	assert.Contains(t, pids, byte(0x05), "COOLANT_TEMP поддерживается")
	assert.NotContains(t, pids, byte(0x02), "бит 0x02 не установлен")
	assert.NotContains(t, pids, byte(0x0A), "бит 0x0A не установлен")
}

func TestParseDTC(t *testing.T) {
	codes := parseDTC([]byte{0x01, 0x33, 0x40, 0x01, 0x00, 0x00})

	assert.Equal(t, []string{"P0133", "C0001"}, codes)
}

func TestParseDTCResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "ISO frame with padding", raw: "43013300000000\r\r>", want: []string{"P0133"}},
		{name: "CAN frame with count byte", raw: "430201330217\r\r>", want: []string{"P0133", "P0217"}},
		{name: "no stored codes", raw: "NO DATA\r\r>", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := parseDTCResponse(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, codes)
		})
	}
}

type fakeQuerier struct {
	values map[string]float64
	codes  []string
}

func (f *fakeQuerier) Query(cmd Command) (float64, error) {
	v, ok := f.values[cmd.Name]
	if !ok {
		return 0, fmt.Errorf("no data for %s", cmd.Name)
	}
	return v, nil
}

func (f *fakeQuerier) DTCs() ([]string, error) {
	return f.codes, nil
}

type busMock struct {
	mu       sync.Mutex
	messages map[string]string
}

func (b *busMock) Publish(topic, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages == nil {
		b.messages = map[string]string{}
	}
	b.messages[topic] = payload
}

func (b *busMock) get(topic string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.messages[topic]
	return v, ok
}

func TestMonitorPoll(t *testing.T) {
	bus := &busMock{}
	q := &fakeQuerier{
		values: map[string]float64{"RPM": 1726, "COOLANT_TEMP": 83},
		codes:  []string{"P0133"},
	}

	m := NewMonitor(newTestLogger(t), bus, q, []Command{
		mustCommand(t, "RPM"),
		mustCommand(t, "COOLANT_TEMP"),
		mustCommand(t, "SPEED"),
	}, 0)
	m.poll()

	rpm, ok := bus.get(topics.Metric("RPM"))
	require.True(t, ok)
	assert.Equal(t, "1726", rpm)

	temp, ok := bus.get(topics.Metric("COOLANT_TEMP"))
	require.True(t, ok)
	assert.Equal(t, "83", temp)

	// Метрика без ответа пропускается, остальные публикуются.
	_, ok = bus.get(topics.Metric("SPEED"))
	assert.False(t, ok)

	dtc, ok := bus.get(topics.DTCPrefix + "P0133")
	require.True(t, ok)
	assert.Equal(t, "P0133", dtc)
}
