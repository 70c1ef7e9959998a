package sensor

import "github.com/chewxy/math32"

// Smoother скользящее среднее отсчётов для подавления шума АЦП.
type Smoother struct {
	window []uint16
	size   int
}

// NewSmoother конструктор. size меньше двух - усреднение выключено.
func NewSmoother(size int) *Smoother {
	if size < 1 {
		size = 1
	}
	return &Smoother{size: size}
}

// Add добавляет отсчёт и возвращает среднее по окну,
// округлённое до ближайшего целого.
func (s *Smoother) Add(counts uint16) uint16 {
	s.window = append(s.window, counts)
	if len(s.window) > s.size {
		s.window = s.window[1:]
	}

	var sum uint32
	for _, c := range s.window {
		sum += uint32(c)
	}
	avg := float32(sum) / float32(len(s.window))
	return uint16(math32.Round(avg))
}
