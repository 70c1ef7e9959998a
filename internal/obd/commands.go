package obd

import "fmt"

// Command один запрос OBD-II (SAE J1979, режим 01).
type Command struct {
	Name   string  // Name - имя метрики, оно же хвост топика lemons/<Name>.
	Mode   byte    // Mode - режим запроса.
	PID    byte    // PID - идентификатор параметра.
	Decode Decoder // Decode - перевод байтов ответа в значение.
}

// Decoder переводит байты данных ответа в физическое значение.
type Decoder func(data []byte) (float64, error)

// Commands метрики из исходного клиента, у которых есть стандартный
// PID первого режима. Имена сохранены как есть, включая AMBIANT -
// под них уже записаны топики.
var Commands = []Command{
	{Name: "ENGINE_LOAD", Mode: 0x01, PID: 0x04, Decode: decodePercent},
	{Name: "COOLANT_TEMP", Mode: 0x01, PID: 0x05, Decode: decodeTemp},
	{Name: "FUEL_PRESSURE", Mode: 0x01, PID: 0x0A, Decode: decodeFuelPressure},
	{Name: "INTAKE_PRESSURE", Mode: 0x01, PID: 0x0B, Decode: decodeByte},
	{Name: "RPM", Mode: 0x01, PID: 0x0C, Decode: decodeRPM},
	{Name: "SPEED", Mode: 0x01, PID: 0x0D, Decode: decodeByte},
	{Name: "TIMING_ADVANCE", Mode: 0x01, PID: 0x0E, Decode: decodeTiming},
	{Name: "INTAKE_TEMP", Mode: 0x01, PID: 0x0F, Decode: decodeTemp},
	{Name: "MAF", Mode: 0x01, PID: 0x10, Decode: decodeMAF},
	{Name: "THROTTLE_POS", Mode: 0x01, PID: 0x11, Decode: decodePercent},
	{Name: "RUN_TIME", Mode: 0x01, PID: 0x1F, Decode: decodeWord},
	{Name: "FUEL_LEVEL", Mode: 0x01, PID: 0x2F, Decode: decodePercent},
	{Name: "BAROMETRIC_PRESSURE", Mode: 0x01, PID: 0x33, Decode: decodeByte},
	{Name: "CONTROL_MODULE_VOLTAGE", Mode: 0x01, PID: 0x42, Decode: decodeVoltage},
	{Name: "AMBIANT_AIR_TEMP", Mode: 0x01, PID: 0x46, Decode: decodeTemp},
	{Name: "OIL_TEMP", Mode: 0x01, PID: 0x5C, Decode: decodeTemp},
}

// CommandByName ищет команду по имени метрики.
func CommandByName(name string) (Command, bool) {
	for _, cmd := range Commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

func need(data []byte, n int) error {
	if len(data) < n {
		return fmt.Errorf("expected %d data bytes, got %d", n, len(data))
	}
	return nil
}

// A*100/255, проценты.
func decodePercent(data []byte) (float64, error) {
	if err := need(data, 1); err != nil {
		return 0, err
	}
	return float64(data[0]) * 100.0 / 255.0, nil
}

// A-40, °C.
func decodeTemp(data []byte) (float64, error) {
	if err := need(data, 1); err != nil {
		return 0, err
	}
	return float64(data[0]) - 40.0, nil
}

// A как есть.
func decodeByte(data []byte) (float64, error) {
	if err := need(data, 1); err != nil {
		return 0, err
	}
	return float64(data[0]), nil
}

// (256A+B).
func decodeWord(data []byte) (float64, error) {
	if err := need(data, 2); err != nil {
		return 0, err
	}
	return float64(data[0])*256.0 + float64(data[1]), nil
}

// (256A+B)/4, об/мин.
func decodeRPM(data []byte) (float64, error) {
	v, err := decodeWord(data)
	return v / 4.0, err
}

// (256A+B)/100, г/с.
func decodeMAF(data []byte) (float64, error) {
	v, err := decodeWord(data)
	return v / 100.0, err
}

// (256A+B)/1000, В.
func decodeVoltage(data []byte) (float64, error) {
	v, err := decodeWord(data)
	return v / 1000.0, err
}

// A/2-64, градусы до ВМТ.
func decodeTiming(data []byte) (float64, error) {
	if err := need(data, 1); err != nil {
		return 0, err
	}
	return float64(data[0])/2.0 - 64.0, nil
}

// A*3, кПа.
func decodeFuelPressure(data []byte) (float64, error) {
	if err := need(data, 1); err != nil {
		return 0, err
	}
	return float64(data[0]) * 3.0, nil
}

// supportedPIDs разбирает битовую карту ответа 01 00/20/40:
// старший бит первого байта - PID base+1 и далее по порядку.
func supportedPIDs(data []byte, base byte) []byte {
	var pids []byte
	for i, b := range data {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				pids = append(pids, base+byte(i*8+bit)+1)
			}
		}
	}
	return pids
}
