package gps

import (
	"context"
	"strconv"
	"time"

	"vtms/internal/logger"
	"vtms/internal/topics"
)

// Bus то, что умеет публиковать телеметрию.
type Bus interface {
	Publish(topic, payload string)
}

// Publisher публикует последнюю позицию с фиксированным периодом.
type Publisher struct {
	log      logger.Logger
	bus      Bus
	interval time.Duration
}

// NewPublisher конструктор.
func NewPublisher(log logger.Logger, bus Bus, interval time.Duration) *Publisher {
	return &Publisher{log: log, bus: bus, interval: interval}
}

// Start запускает публикацию в отдельной горутине. Горутина живёт
// до отмены контекста или закрытия канала позиций.
func (p *Publisher) Start(ctx context.Context, fixes <-chan Fix) {
	go p.run(ctx, fixes)
}

func (p *Publisher) run(ctx context.Context, fixes <-chan Fix) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var latest Fix
	var seen bool

	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				p.log.With(logger.Fields{"module": "gps"}).Info("fix stream closed, publisher stopped")
				return
			}
			latest = fix
			seen = true
		case <-ticker.C:
			if !seen {
				continue
			}
			p.publish(latest)
		}
	}
}

func (p *Publisher) publish(fix Fix) {
	lat := formatCoord(fix.Latitude)
	lon := formatCoord(fix.Longitude)

	p.bus.Publish(topics.GPSPos, lat+","+lon)
	p.bus.Publish(topics.GPSLatitude, lat)
	p.bus.Publish(topics.GPSLongitude, lon)
	p.bus.Publish(topics.GPSSpeed, formatValue(fix.Speed))
	p.bus.Publish(topics.GPSAltitude, formatValue(fix.Altitude))
	p.bus.Publish(topics.GPSTrack, formatValue(fix.Track))
}

// formatCoord форматирует координату с шестью знаками после запятой.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
