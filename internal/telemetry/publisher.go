package telemetry

import (
	"context"
	"time"

	"vtms/internal/logger"
	"vtms/internal/sensor"
)

// Bus публикует сообщения на шину (обычно *clientmqtt.ClientMQTT).
type Bus interface {
	Publish(topic, payload string)
}

// Format превращает отсчёт АЦП в строку для публикации.
type Format func(counts uint16) string

// Publisher публикует последний отсчёт датчика в один фиксированный
// топик с фиксированным периодом. Ошибки публикации не обрабатываются:
// шина сама логирует и переподключается.
type Publisher struct {
	log      logger.Logger
	bus      Bus
	topic    string
	interval time.Duration
	smoother *sensor.Smoother
	format   Format
}

// NewPublisher конструктор.
func NewPublisher(log logger.Logger, bus Bus, topic string, interval time.Duration, smoother *sensor.Smoother, format Format) *Publisher {
	return &Publisher{
		log:      log,
		bus:      bus,
		topic:    topic,
		interval: interval,
		smoother: smoother,
		format:   format,
	}
}

// Start запускает цикл публикации.
func (p *Publisher) Start(ctx context.Context, samples <-chan sensor.Sample) {
	go p.run(ctx, samples)
}

func (p *Publisher) run(ctx context.Context, samples <-chan sensor.Sample) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var latest uint16
	var seen bool

	for {
		select {
		case <-ctx.Done():
			return

		case s, ok := <-samples:
			if !ok {
				return
			}
			latest = p.smoother.Add(s.Counts)
			seen = true

		case <-ticker.C:
			if !seen {
				// Плата ещё не прислала ни одного отсчёта.
				continue
			}
			value := p.format(latest)
			p.log.With(logger.Fields{"module": "telemetry"}).Debugf("publish %s: %s", p.topic, value)
			p.bus.Publish(p.topic, value)
		}
	}
}
