package dispatch

import (
	"testing"

	"vtms/internal/topics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugToggle(t *testing.T) {
	log := newTestLogger(t)
	require.Equal(t, "error", log.GetLevel())

	router := NewRouter(log)
	router.Handle(topics.Debug, DebugLevelHandler(log, "error"))

	ok := router.Route(topics.Debug, []byte("true"))
	require.True(t, ok)
	assert.Equal(t, "debug", log.GetLevel(), "команда true включает debug")

	router.Route(topics.Debug, []byte("false"))
	assert.Equal(t, "error", log.GetLevel(), "команда false возвращает базовый уровень")
}

func TestDebugToggleUnknownPayload(t *testing.T) {
	log := newTestLogger(t)
	h := DebugLevelHandler(log, "error")

	h(topics.Debug, []byte("true"))
	require.Equal(t, "debug", log.GetLevel())

	// Любой payload кроме "true" выключает отладку.
	h(topics.Debug, []byte("banana"))
	assert.Equal(t, "error", log.GetLevel())
}
