package sensor

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"vtms/internal/logger"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate скорость порта платы датчика.
	DefaultBaudRate = 115200
	// DefaultBufferSize размер буфера канала отсчётов.
	DefaultBufferSize = 100
)

// Serial читает отсчёты с платы датчика по последовательному порту.
// Формат кадра - строка "millis,counts".
type Serial struct {
	log      logger.Logger
	port     string
	baudRate int

	conn      serial.Port
	samples   chan Sample
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewSerial конструктор.
func NewSerial(log logger.Logger, port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		log:      log,
		port:     port,
		baudRate: baudRate,
		samples:  make(chan Sample, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect открывает порт и запускает чтение отсчётов.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = conn
	s.connected = true
	go s.readLoop()
	return nil
}

// Close останавливает чтение и закрывает порт.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.connected {
		return nil
	}
	s.connected = false
	return s.conn.Close()
}

// Samples возвращает канал отсчётов.
func (s *Serial) Samples() <-chan Sample {
	return s.samples
}

func (s *Serial) readLoop() {
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			s.log.With(logger.Fields{"module": "sensor"}).Debugf("bad frame %q: %v", line, err)
			continue
		}

		select {
		case s.samples <- sample:
		default:
			// Потребитель отстаёт - отсчёт теряем, свежий важнее.
			s.log.With(logger.Fields{"module": "sensor"}).Debug("samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.With(logger.Fields{"module": "sensor"}).Errorf("serial read stopped: %v", err)
	}
}

// parseLine разбирает кадр "millis,counts".
func parseLine(line string) (Sample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return Sample{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	counts, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid counts: %w", err)
	}
	if counts > 4095 {
		return Sample{}, fmt.Errorf("counts %d out of 12-bit range", counts)
	}

	return Sample{
		When:   time.Unix(0, ms*int64(time.Millisecond)),
		Counts: uint16(counts),
	}, nil
}
