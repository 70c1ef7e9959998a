package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"vtms/internal/config"
	"vtms/internal/logger"
	"vtms/internal/sensor"
	"vtms/internal/topics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type busMock struct {
	mu       sync.Mutex
	messages []string
}

func (b *busMock) Publish(topic, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, topic+" "+payload)
}

func (b *busMock) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func (b *busMock) last() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return "", false
	}
	return b.messages[len(b.messages)-1], true
}

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(config.LogConf{Level: "error"})
	require.NoError(t, err)
	return log
}

func TestPublishesLatestSample(t *testing.T) {
	bus := &busMock{}
	source := sensor.NewMock()
	require.NoError(t, source.Connect())

	vref := float32(3.3)
	p := NewPublisher(newTestLogger(t), bus, topics.TempTransmission, 10*time.Millisecond,
		sensor.NewSmoother(1), func(counts uint16) string {
			return sensor.FormatVolts(sensor.Volts(counts, vref))
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, source.Samples())

	source.Feed(2048)

	require.Eventually(t, func() bool {
		msg, ok := bus.last()
		return ok && msg == topics.TempTransmission+" 1.650"
	}, time.Second, 5*time.Millisecond)
}

func TestNothingPublishedBeforeFirstSample(t *testing.T) {
	bus := &busMock{}
	source := sensor.NewMock()
	require.NoError(t, source.Connect())

	p := NewPublisher(newTestLogger(t), bus, topics.TempOilF, 5*time.Millisecond,
		sensor.NewSmoother(1), sensor.FormatOilF)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, source.Samples())

	time.Sleep(30 * time.Millisecond)

	_, ok := bus.last()
	assert.False(t, ok, "без отсчётов публиковать нечего")
}

func TestStopsWhenSourceCloses(t *testing.T) {
	bus := &busMock{}
	source := sensor.NewMock()
	require.NoError(t, source.Connect())

	p := NewPublisher(newTestLogger(t), bus, topics.TempOilF, 5*time.Millisecond,
		sensor.NewSmoother(1), sensor.FormatOilF)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, source.Samples())

	source.Feed(400)
	require.Eventually(t, func() bool {
		msg, ok := bus.last()
		return ok && msg == topics.TempOilF+" 212"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, source.Close())

	time.Sleep(20 * time.Millisecond)
	before := bus.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, bus.count(), "после закрытия источника публикации прекращаются")
}
