package pins

import "sync"

// Mock драйвер для тестов и запуска без железа.
type Mock struct {
	mu     sync.Mutex
	levels map[Signal]Level
	writes int
}

// NewMock конструктор.
func NewMock() *Mock {
	return &Mock{levels: map[Signal]Level{}}
}

func (m *Mock) SetLevel(sig Signal, level Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[sig] = level
	m.writes++
	return nil
}

func (m *Mock) Close() error {
	return nil
}

// Level возвращает последний выставленный уровень линии.
func (m *Mock) Level(sig Signal) Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[sig]
}

// Writes возвращает число обращений к драйверу.
func (m *Mock) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
