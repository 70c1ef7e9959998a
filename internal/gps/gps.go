package gps

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"vtms/internal/logger"

	"github.com/adrianmo/go-nmea"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate скорость порта GPS приёмника.
	DefaultBaudRate = 9600
	// DefaultBufferSize размер буфера канала позиций.
	DefaultBufferSize = 16
	// knotsToMS перевод узлов в м/с.
	knotsToMS = 0.514444
)

// Fix текущая позиция приёмника.
type Fix struct {
	Latitude  float64 // Latitude - широта, градусы.
	Longitude float64 // Longitude - долгота, градусы.
	Altitude  float64 // Altitude - высота, м.
	Speed     float64 // Speed - скорость над землёй, м/с.
	Track     float64 // Track - путевой угол, градусы.
	When      time.Time
}

// Reader читает NMEA поток с приёмника по последовательному порту.
// Позиция собирается из предложений RMC (координаты, скорость, курс)
// и GGA (высота).
type Reader struct {
	log      logger.Logger
	port     string
	baudRate int

	conn      serial.Port
	fixes     chan Fix
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewReader конструктор.
func NewReader(log logger.Logger, port string, baudRate int) *Reader {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reader{
		log:      log,
		port:     port,
		baudRate: baudRate,
		fixes:    make(chan Fix, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect открывает порт и запускает чтение потока.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := serial.Open(r.port, &serial.Mode{BaudRate: r.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open GPS port %s: %w", r.port, err)
	}

	r.conn = conn
	r.connected = true
	go r.readLoop()
	return nil
}

// Close останавливает чтение и закрывает порт.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	if !r.connected {
		return nil
	}
	r.connected = false
	return r.conn.Close()
}

// Fixes возвращает канал позиций.
func (r *Reader) Fixes() <-chan Fix {
	return r.fixes
}

func (r *Reader) readLoop() {
	var fix Fix

	scanner := bufio.NewScanner(r.conn)
	for scanner.Scan() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		updated, err := applySentence(&fix, line)
		if err != nil {
			r.log.With(logger.Fields{"module": "gps"}).Debugf("bad sentence %q: %v", line, err)
			continue
		}
		if !updated {
			continue
		}

		select {
		case r.fixes <- fix:
		default:
			// Потребитель отстаёт - позицию теряем, свежая важнее.
			r.log.With(logger.Fields{"module": "gps"}).Debug("fixes channel full, dropping fix")
		}
	}

	if err := scanner.Err(); err != nil {
		r.log.With(logger.Fields{"module": "gps"}).Errorf("GPS read stopped: %v", err)
	}
}

// applySentence обновляет позицию данными одного NMEA предложения.
// Возвращает true, если позиция изменилась.
func applySentence(fix *Fix, line string) (bool, error) {
	s, err := nmea.Parse(line)
	if err != nil {
		return false, err
	}

	switch v := s.(type) {
	case nmea.RMC:
		if v.Validity != nmea.ValidRMC {
			return false, nil
		}
		fix.Latitude = v.Latitude
		fix.Longitude = v.Longitude
		fix.Speed = v.Speed * knotsToMS
		fix.Track = v.Course
		fix.When = time.Now()
		return true, nil
	case nmea.GGA:
		if v.FixQuality == nmea.Invalid {
			return false, nil
		}
		fix.Latitude = v.Latitude
		fix.Longitude = v.Longitude
		fix.Altitude = v.Altitude
		fix.When = time.Now()
		return true, nil
	}
	return false, nil
}
