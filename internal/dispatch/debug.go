package dispatch

import "vtms/internal/logger"

// DebugLevelHandler переключает уровень логирования командой с шины.
// Payload "true" включает debug, любой другой возвращает baseLevel.
func DebugLevelHandler(log logger.Logger, baseLevel string) HandlerFunc {
	return func(topic string, payload []byte) {
		level := baseLevel
		if string(payload) == "true" {
			level = "debug"
		}
		if err := log.SetLevel(level); err != nil {
			log.With(logger.Fields{"module": "dispatch"}).Errorf("failed to set level %s: %v", level, err)
			return
		}
		log.With(logger.Fields{"module": "dispatch"}).Infof("log level set to %s", level)
	}
}
