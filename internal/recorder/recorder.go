package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vtms/internal/logger"

	_ "modernc.org/sqlite"
)

// Entry одна строка телеметрии.
type Entry struct {
	Topic string
	Value string
	When  time.Time
}

// Store пишет телеметрию в SQLite. Все вставки идут через одного
// писателя: у SQLite один писатель на файл.
type Store struct {
	log    logger.Logger
	db     *sql.DB
	queue  chan Entry
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewStore конструктор. Создаёт каталог, файл и схему при необходимости.
func NewStore(log logger.Logger, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS telemetry(topic TEXT, value TEXT, timestamp REAL)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{
		log:   log,
		db:    db,
		queue: make(chan Entry, 256),
		done:  make(chan struct{}),
	}
	go s.writer()
	return s, nil
}

// Write ставит сообщение в очередь на запись. Не блокирует доставку
// с шины: при переполнении очереди строка теряется. Сообщение,
// пришедшее после Close, молча отбрасывается - шина может доставить
// его между остановкой клиента и закрытием базы.
func (s *Store) Write(topic string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.With(logger.Fields{"module": "recorder"}).Debug("store closed, dropping entry")
		return
	}

	e := Entry{Topic: topic, Value: string(payload), When: time.Now()}
	select {
	case s.queue <- e:
	default:
		s.log.With(logger.Fields{"module": "recorder"}).Error("write queue full, dropping entry")
	}
}

func (s *Store) writer() {
	defer close(s.done)
	for e := range s.queue {
		ts := float64(e.When.UnixNano()) / float64(time.Second)
		if _, err := s.db.Exec("INSERT INTO telemetry VALUES(?, ?, ?)", e.Topic, e.Value, ts); err != nil {
			s.log.With(logger.Fields{"module": "recorder"}).Errorf("insert failed: %v", err)
		}
	}
}

// Recent возвращает последние строки телеметрии, свежие первыми.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query("SELECT topic, value, timestamp FROM telemetry ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts float64
		if err := rows.Scan(&e.Topic, &e.Value, &ts); err != nil {
			return nil, err
		}
		e.When = time.Unix(0, int64(ts*float64(time.Second)))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close дописывает очередь и закрывает базу. Повторный вызов - no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.queue)
	<-s.done
	return s.db.Close()
}
