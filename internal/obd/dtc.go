package obd

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// dtcSystems буква кода по двум старшим битам первого байта.
var dtcSystems = [4]byte{'P', 'C', 'B', 'U'}

// parseDTC разбирает пары байтов ответа режима 03 в коды вида P0133.
// Нулевые пары - заполнитель кадра, пропускаются.
func parseDTC(data []byte) []string {
	var codes []string
	for i := 0; i+1 < len(data); i += 2 {
		a, b := data[i], data[i+1]
		if a == 0 && b == 0 {
			continue
		}
		codes = append(codes, fmt.Sprintf("%c%d%X%02X", dtcSystems[a>>6], (a>>4)&0x03, a&0x0F, b))
	}
	return codes
}

// parseDTCResponse выделяет байты кодов из сырого ответа адаптера.
// Заголовок 43, дальше - пары байтов, первый байт может быть счётчиком.
func parseDTCResponse(raw string) ([]string, error) {
	for _, line := range strings.Split(raw, "\r") {
		line = strings.ToUpper(strings.TrimSpace(strings.Trim(line, ">\n")))
		line = strings.ReplaceAll(line, " ", "")
		if line == "" || line == "SEARCHING..." {
			continue
		}
		if line == "NODATA" {
			return nil, nil
		}
		if !strings.HasPrefix(line, "43") {
			continue
		}
		payload := line[2:]
		// Нечётное число байтов - ведущий байт со счётчиком кодов.
		if len(payload)%4 != 0 && len(payload) >= 2 {
			payload = payload[2:]
		}
		data, err := hex.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("bad DTC response %q: %w", line, err)
		}
		return parseDTC(data), nil
	}
	return nil, fmt.Errorf("no DTC data")
}
