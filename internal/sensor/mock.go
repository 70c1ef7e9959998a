package sensor

import (
	"fmt"
	"sync"
	"time"
)

// Mock источник отсчётов для тестов.
type Mock struct {
	mu        sync.Mutex
	samples   chan Sample
	connected bool
}

// NewMock конструктор.
func NewMock() *Mock {
	return &Mock{samples: make(chan Sample, DefaultBufferSize)}
}

func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	m.connected = false
	close(m.samples)
	return nil
}

func (m *Mock) Samples() <-chan Sample {
	return m.samples
}

// Feed подаёт отсчёт в канал.
func (m *Mock) Feed(counts uint16) {
	m.samples <- Sample{When: time.Now(), Counts: counts}
}
