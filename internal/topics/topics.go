// Package topics перечисляет все MQTT топики системы VTMS.
package topics

const (
	// Status - статус/приветствия узлов.
	Status = "emqx/esp32"

	// Входящие команды маршала, payload строго "true"/"false".
	FlagBlack = "lemons/flag/black" // FlagBlack - чёрный флаг.
	FlagRed   = "lemons/flag/red"   // FlagRed - красный флаг.
	Pit       = "lemons/pit"        // Pit - скоро пит-стоп.
	Box       = "lemons/box"        // Box - box box box.

	// FlagPrefix - префикс всех флаговых команд.
	FlagPrefix = "lemons/flag/"

	// Служебные команды узлам.
	Debug    = "lemons/debug"      // Debug - переключение отладочного логирования.
	Message  = "lemons/message"    // Message - текстовое сообщение экипажу.
	OBDQuery = "lemons/obd2/query" // OBDQuery - разовый запрос метрики, payload - её имя.

	// Исходящая телеметрия.
	TempTransmission = "lemons/temp/transmission" // напряжение датчика КПП, В.
	TempOilF         = "lemons/temp/oil_F"        // температура масла, °F.

	// Телеметрия GPS.
	GPSPos       = "lemons/gps/pos"       // GPSPos - пара "lat,lon".
	GPSLatitude  = "lemons/gps/latitude"  // GPSLatitude - широта, градусы.
	GPSLongitude = "lemons/gps/longitude" // GPSLongitude - долгота, градусы.
	GPSSpeed     = "lemons/gps/speed"     // GPSSpeed - скорость, м/с.
	GPSAltitude  = "lemons/gps/altitude"  // GPSAltitude - высота, м.
	GPSTrack     = "lemons/gps/track"     // GPSTrack - путевой угол, градусы.

	// DTCPrefix - префикс кодов неисправностей OBD-II.
	DTCPrefix = "lemons/DTC/"

	// LemonsAll - фильтр на все команды и телеметрию.
	LemonsAll = "lemons/#"
)

// Metric возвращает топик метрики OBD-II по её имени.
func Metric(name string) string {
	return "lemons/" + name
}
