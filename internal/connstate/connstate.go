package connstate

import (
	"sync/atomic"

	"vtms/internal/logger"
)

// State состояние подключения узла. Переходы только вперёд,
// кроме возврата в BusConnecting при потере сессии.
type State int32

const (
	Disconnected State = iota
	NetworkJoining
	NetworkJoined
	BusConnecting
	BusConnected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case NetworkJoining:
		return "network-joining"
	case NetworkJoined:
		return "network-joined"
	case BusConnecting:
		return "bus-connecting"
	case BusConnected:
		return "bus-connected"
	default:
		return "unknown"
	}
}

// Tracker хранит текущее состояние и логирует переходы.
type Tracker struct {
	log   logger.Logger
	state atomic.Int32
}

// NewTracker конструктор. Начальное состояние - Disconnected.
func NewTracker(log logger.Logger) *Tracker {
	return &Tracker{log: log}
}

// Set переводит трекер в новое состояние.
func (t *Tracker) Set(s State) {
	old := State(t.state.Swap(int32(s)))
	if old == s {
		return
	}
	t.log.With(logger.Fields{"module": "connstate"}).Infof("state: %s -> %s", old, s)
}

// Get возвращает текущее состояние.
func (t *Tracker) Get() State {
	return State(t.state.Load())
}
