package obd

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"vtms/internal/logger"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate скорость порта адаптера ELM327.
	DefaultBaudRate = 38400
	// readTimeout лимит ожидания ответа адаптера.
	readTimeout = 5 * time.Second
)

// Client общается с OBD-II шиной через адаптер ELM327.
// Протокол строчный: команда + CR, ответ до приглашения '>'.
type Client struct {
	log      logger.Logger
	port     string
	baudRate int

	mu        sync.Mutex
	conn      serial.Port
	reader    *bufio.Reader
	connected bool
}

// NewClient конструктор. Пустое имя порта - перебор всех портов системы.
func NewClient(log logger.Logger, port string, baudRate int) *Client {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Client{log: log, port: port, baudRate: baudRate}
}

// Connect открывает порт, сбрасывает адаптер и проверяет связь с машиной.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected")
	}

	ports := []string{c.port}
	if c.port == "" {
		found, err := serial.GetPortsList()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %w", err)
		}
		ports = found
	}

	var lastErr error
	for _, port := range ports {
		if err := c.open(port); err != nil {
			lastErr = err
			c.log.With(logger.Fields{"module": "obd"}).Debugf("port %s: %v", port, err)
			continue
		}
		c.connected = true
		c.log.With(logger.Fields{"module": "obd"}).Info("OBDII connected on ", port)
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no serial ports found")
	}
	return fmt.Errorf("no OBDII adapter: %w", lastErr)
}

func (c *Client) open(port string) error {
	conn, err := serial.Open(port, &serial.Mode{BaudRate: c.baudRate})
	if err != nil {
		return err
	}
	if err := conn.SetReadTimeout(readTimeout); err != nil {
		conn.Close()
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)

	// ATZ - сброс, дальше гасим эхо и перевод строки, протокол - авто.
	for _, at := range []string{"ATZ", "ATE0", "ATL0", "ATS0", "ATSP0"} {
		if _, err := c.send(at); err != nil {
			conn.Close()
			return fmt.Errorf("init %s: %w", at, err)
		}
	}

	// Запрос 0100 отвечает только машина, не адаптер.
	raw, err := c.send("0100")
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := parseResponse(raw, 0x01, 0x00); err != nil {
		conn.Close()
		return fmt.Errorf("car not responding: %w", err)
	}
	return nil
}

// Close закрывает порт.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	return c.conn.Close()
}

// Query выполняет команду и возвращает декодированное значение.
func (c *Client) Query(cmd Command) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return 0, fmt.Errorf("not connected")
	}

	raw, err := c.send(fmt.Sprintf("%02X%02X", cmd.Mode, cmd.PID))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	data, err := parseResponse(raw, cmd.Mode, cmd.PID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return cmd.Decode(data)
}

// Supported возвращает команды из Commands, которые машина поддерживает
// по битовым картам PID 00/20/40.
func (c *Client) Supported() ([]Command, error) {
	supported := map[byte]bool{}
	for _, base := range []byte{0x00, 0x20, 0x40} {
		c.mu.Lock()
		if !c.connected {
			c.mu.Unlock()
			return nil, fmt.Errorf("not connected")
		}
		raw, err := c.send(fmt.Sprintf("01%02X", base))
		c.mu.Unlock()
		if err != nil {
			break
		}
		data, err := parseResponse(raw, 0x01, base)
		if err != nil {
			break
		}
		for _, pid := range supportedPIDs(data, base) {
			supported[pid] = true
		}
	}

	var commands []Command
	for _, cmd := range Commands {
		if supported[cmd.PID] {
			commands = append(commands, cmd)
		}
	}
	return commands, nil
}

// DTCs запрашивает активные коды неисправностей (режим 03).
func (c *Client) DTCs() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected")
	}

	raw, err := c.send("03")
	if err != nil {
		return nil, err
	}
	return parseDTCResponse(raw)
}

// send пишет команду и читает ответ до приглашения '>'.
func (c *Client) send(cmd string) (string, error) {
	if _, err := c.conn.Write([]byte(cmd + "\r")); err != nil {
		return "", fmt.Errorf("write failed: %w", err)
	}
	raw, err := c.reader.ReadString('>')
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	return raw, nil
}

// parseResponse ищет в сыром ответе адаптера строку с данными
// (mode+0x40, PID) и возвращает байты данных после заголовка.
func parseResponse(raw string, mode, pid byte) ([]byte, error) {
	head := fmt.Sprintf("%02X%02X", mode+0x40, pid)

	for _, line := range strings.Split(raw, "\r") {
		line = strings.ToUpper(strings.TrimSpace(strings.Trim(line, ">\n")))
		line = strings.ReplaceAll(line, " ", "")
		if line == "" || line == "SEARCHING..." {
			continue
		}
		if line == "NODATA" || line == "UNABLETOCONNECT" || line == "CANERROR" {
			return nil, fmt.Errorf("adapter: %s", line)
		}
		if !strings.HasPrefix(line, head) {
			continue
		}
		data, err := hex.DecodeString(line[len(head):])
		if err != nil {
			return nil, fmt.Errorf("bad response %q: %w", line, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no data for %s", head)
}
