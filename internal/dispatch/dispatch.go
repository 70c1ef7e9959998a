package dispatch

import (
	"strings"

	"vtms/internal/logger"
)

// HandlerFunc обработчик пары (топик, payload). Только побочный эффект,
// возвращаемого значения у шины нет.
type HandlerFunc func(topic string, payload []byte)

type prefixRoute struct {
	prefix string
	h      HandlerFunc
}

// Router маршрутизирует входящие сообщения: сначала точное совпадение
// топика, затем совпадение по префиксу. Неизвестные сообщения
// логируются и отбрасываются.
type Router struct {
	log      logger.Logger
	exact    map[string]HandlerFunc
	prefixes []prefixRoute
}

// NewRouter конструктор.
func NewRouter(log logger.Logger) *Router {
	return &Router{
		log:   log,
		exact: map[string]HandlerFunc{},
	}
}

// Handle регистрирует обработчик точного топика.
func (r *Router) Handle(topic string, h HandlerFunc) {
	r.exact[topic] = h
}

// HandlePrefix регистрирует обработчик по префиксу топика.
func (r *Router) HandlePrefix(prefix string, h HandlerFunc) {
	r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, h: h})
}

// Route передаёт сообщение первому подходящему обработчику.
// Возвращает false, если обработчик не найден.
func (r *Router) Route(topic string, payload []byte) bool {
	if h, ok := r.exact[topic]; ok {
		h(topic, payload)
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(topic, p.prefix) {
			p.h(topic, payload)
			return true
		}
	}
	r.log.With(logger.Fields{"module": "dispatch"}).Debugf("no handler found for topic: %s", topic)
	return false
}
