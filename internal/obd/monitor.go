package obd

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

// Querier опрашиваемый источник метрик и кодов неисправностей.
type Querier interface {
	Query(cmd Command) (float64, error)
	DTCs() ([]string, error)
}

// Monitor циклически опрашивает команды и публикует значения в шину.
// Метрики уходят в lemons/<имя>, коды неисправностей - в lemons/DTC/<код>.
type Monitor struct {
	log      logger.Logger
	bus      Bus
	q        Querier
	commands []Command
	interval time.Duration
}

// NewMonitor конструктор.
func NewMonitor(log logger.Logger, bus Bus, q Querier, commands []Command, interval time.Duration) *Monitor {
	return &Monitor{
		log:      log,
		bus:      bus,
		q:        q,
		commands: commands,
		interval: interval,
	}
}

// Start запускает цикл опроса в отдельной горутине.
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	for _, cmd := range m.commands {
		v, err := m.q.Query(cmd)
		if err != nil {
			m.log.With(logger.Fields{"module": "obd"}).Debugf("query %s: %v", cmd.Name, err)
			continue
		}
		m.bus.Publish(topics.Metric(cmd.Name), FormatValue(v))
	}

	codes, err := m.q.DTCs()
	if err != nil {
		m.log.With(logger.Fields{"module": "obd"}).Debugf("DTC query: %v", err)
		return
	}
	for _, code := range codes {
		m.bus.Publish(topics.DTCPrefix+code, code)
	}
}

// FormatValue форматирует значение метрики для публикации.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
