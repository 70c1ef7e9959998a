package sensor

import "time"

// Sample один отсчёт АЦП с платы датчика.
type Sample struct {
	When   time.Time // When - время отсчёта.
	Counts uint16    // Counts - 12-битное значение АЦП (0-4095).
}

// Source источник отсчётов (плата по последовательному порту или мок).
type Source interface {
	Connect() error
	Close() error
	Samples() <-chan Sample
}

// Ensure both sources implement Source.
var _ Source = (*Serial)(nil)
var _ Source = (*Mock)(nil)
