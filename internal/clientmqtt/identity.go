package clientmqtt

import (
	"net"

	"github.com/google/uuid"
)

// ClientID составляет идентификатор клиента: префикс + MAC адрес.
// Идентификатор уникален среди узлов без центральной координации.
// Если MAC недоступен, берётся случайный UUID, иначе два безымянных
// узла вытесняли бы друг друга с брокера.
func ClientID(prefix string, hw net.HardwareAddr) string {
	if len(hw) == 0 {
		return prefix + uuid.NewString()
	}
	return prefix + hw.String()
}
