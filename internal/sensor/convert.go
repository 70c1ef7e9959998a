package sensor

import (
	"strconv"
	"time"
)

// MinThermoInterval аппаратный минимум чтения MAX6675: преобразование
// термопары занимает до 250 мс, чаще опрашивать бессмысленно.
const MinThermoInterval = 250 * time.Millisecond

// ThermoInterval прижимает период публикации термопары к аппаратному
// минимуму. Период меньше минимума дал бы повторы одного отсчёта.
func ThermoInterval(d time.Duration) time.Duration {
	if d < MinThermoInterval {
		return MinThermoInterval
	}
	return d
}

// adcResolution число уровней 12-битного АЦП. Прошивка делила на 4096,
// не на 4095 - сохраняем, иначе поедут опубликованные значения.
const adcResolution = 4096.0

// Volts переводит отсчёт АЦП в напряжение относительно vref.
func Volts(counts uint16, vref float32) float32 {
	return float32(counts) * vref / adcResolution
}

// FormatVolts форматирует напряжение с тремя знаками после запятой.
func FormatVolts(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}

// Celsius переводит отсчёт MAX6675 в °C (0.25 °C на отсчёт).
func Celsius(counts uint16) float32 {
	return float32(counts) * 0.25
}

// Fahrenheit переводит °C в °F.
func Fahrenheit(c float32) float32 {
	return c*9.0/5.0 + 32.0
}

// FormatOilF форматирует температуру °F целым числом.
// Дробная часть отбрасывается, как в исходной прошивке.
func FormatOilF(counts uint16) string {
	return strconv.FormatInt(int64(Fahrenheit(Celsius(counts))), 10)
}
