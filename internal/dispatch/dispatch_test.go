package dispatch

import (
	"testing"

	"vtms/internal/config"
	"vtms/internal/logger"
	"vtms/internal/pins"
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

func newFlagRouter(t *testing.T) (*Router, *FlagStates, *pins.Mock) {
	t.Helper()
	log := newTestLogger(t)
	driver := pins.NewMock()
	flags := NewFlagStates(log, driver)

	router := NewRouter(log)
	router.Handle(topics.FlagBlack, flags.Handler(pins.BlackFlag))
	router.Handle(topics.FlagRed, flags.Handler(pins.RedFlag))
	router.Handle(topics.Pit, flags.Handler(pins.PitSoon))
	router.Handle(topics.Box, flags.Handler(pins.BoxBox))
	return router, flags, driver
}

func TestFlagRouting(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		signal  pins.Signal
		want    pins.Level
	}{
		{name: "black flag up", topic: topics.FlagBlack, payload: "true", signal: pins.BlackFlag, want: pins.High},
		{name: "red flag up", topic: topics.FlagRed, payload: "true", signal: pins.RedFlag, want: pins.High},
		{name: "pit soon up", topic: topics.Pit, payload: "true", signal: pins.PitSoon, want: pins.High},
		{name: "box box up", topic: topics.Box, payload: "true", signal: pins.BoxBox, want: pins.High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, flags, driver := newFlagRouter(t)

			ok := router.Route(tt.topic, []byte(tt.payload))
			require.True(t, ok)

			assert.Equal(t, tt.want, flags.Level(tt.signal))
			assert.Equal(t, tt.want, driver.Level(tt.signal))

			// Остальные линии не трогаем.
			for _, other := range []pins.Signal{pins.BlackFlag, pins.RedFlag, pins.PitSoon, pins.BoxBox} {
				if other == tt.signal {
					continue
				}
				assert.Equal(t, pins.Low, flags.Level(other))
			}
			assert.Equal(t, 1, driver.Writes())
		})
	}
}

func TestUnknownTopicChangesNothing(t *testing.T) {
	router, _, driver := newFlagRouter(t)

	ok := router.Route("lemons/flag/yellow", []byte("true"))

	assert.False(t, ok)
	assert.Equal(t, 0, driver.Writes())
}

func TestPayloadLiteralsAreExact(t *testing.T) {
	payloads := []string{"True", "TRUE", " true", "true ", "false\n", "1", "0", "yes", ""}

	for _, p := range payloads {
		t.Run("payload "+p, func(t *testing.T) {
			router, flags, driver := newFlagRouter(t)

			ok := router.Route(topics.FlagBlack, []byte(p))

			assert.True(t, ok, "известный топик всегда находит обработчик")
			assert.Equal(t, pins.Low, flags.Level(pins.BlackFlag))
			assert.Equal(t, 0, driver.Writes())
		})
	}
}

func TestBlackFlagSequence(t *testing.T) {
	router, flags, _ := newFlagRouter(t)

	router.Route(topics.FlagBlack, []byte("true"))
	require.Equal(t, pins.High, flags.Level(pins.BlackFlag))

	router.Route(topics.FlagBlack, []byte("false"))
	require.Equal(t, pins.Low, flags.Level(pins.BlackFlag))
}

func TestRepeatedCommandIsNoop(t *testing.T) {
	router, flags, driver := newFlagRouter(t)

	router.Route(topics.FlagBlack, []byte("true"))
	writes := driver.Writes()

	router.Route(topics.FlagBlack, []byte("true"))

	assert.Equal(t, pins.High, flags.Level(pins.BlackFlag))
	assert.Equal(t, writes, driver.Writes(), "повтор команды не дёргает драйвер")
}

func TestPrefixRoute(t *testing.T) {
	log := newTestLogger(t)
	router := NewRouter(log)

	var got string
	router.HandlePrefix("lemons/", func(topic string, payload []byte) {
		got = topic
	})

	ok := router.Route("lemons/RPM", []byte("3200"))

	require.True(t, ok)
	assert.Equal(t, "lemons/RPM", got)
}

func TestExactBeatsPrefix(t *testing.T) {
	log := newTestLogger(t)
	router := NewRouter(log)

	var called string
	router.HandlePrefix("lemons/", func(string, []byte) { called = "prefix" })
	router.Handle(topics.Pit, func(string, []byte) { called = "exact" })

	router.Route(topics.Pit, []byte("true"))

	assert.Equal(t, "exact", called)
}
