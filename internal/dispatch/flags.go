package dispatch

import (
	"vtms/internal/logger"
	"vtms/internal/pins"
)

// FlagStates таблица состояний сигнальных линий. Владеет текущими
// уровнями и меняет их только через драйвер.
type FlagStates struct {
	log    logger.Logger
	driver pins.Driver
	levels map[pins.Signal]pins.Level
}

// NewFlagStates конструктор. Все линии считаются опущенными,
// драйвер выставляет низкий уровень при инициализации.
func NewFlagStates(log logger.Logger, driver pins.Driver) *FlagStates {
	return &FlagStates{
		log:    log,
		driver: driver,
		levels: map[pins.Signal]pins.Level{},
	}
}

// Handler возвращает обработчик команды для одной линии.
// Принимаются строго "true" и "false", без обрезки пробелов и без
// других истинных значений. Всё остальное линию не меняет.
func (f *FlagStates) Handler(sig pins.Signal) HandlerFunc {
	return func(topic string, payload []byte) {
		switch string(payload) {
		case "true":
			f.set(sig, pins.High)
		case "false":
			f.set(sig, pins.Low)
		default:
			f.log.With(logger.Fields{"module": "dispatch"}).Debugf(
				"ignored payload %q on topic %s", payload, topic)
		}
	}
}

func (f *FlagStates) set(sig pins.Signal, level pins.Level) {
	if cur, ok := f.levels[sig]; ok && cur == level {
		// Повтор команды - уровень не трогаем.
		return
	}
	if err := f.driver.SetLevel(sig, level); err != nil {
		f.log.With(logger.Fields{"module": "dispatch"}).Errorf("%s: %v", sig, err)
		return
	}
	f.levels[sig] = level
	f.log.With(logger.Fields{"module": "dispatch"}).Infof("%s -> %s", sig, level)
}

// Level возвращает текущий уровень линии.
func (f *FlagStates) Level(sig pins.Signal) pins.Level {
	return f.levels[sig]
}
