package pins

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vtms/internal/logger"
)

const sysfsRoot = "/sys/class/gpio"

// Sysfs драйвер GPIO через sysfs интерфейс ядра.
type Sysfs struct {
	log     logger.Logger
	root    string
	mapping map[Signal]int
}

// NewSysfs конструктор. Экспортирует линии, направление out, начальный
// уровень низкий.
func NewSysfs(log logger.Logger, mapping map[Signal]int) (*Sysfs, error) {
	return newSysfs(log, sysfsRoot, mapping)
}

func newSysfs(log logger.Logger, root string, mapping map[Signal]int) (*Sysfs, error) {
	d := &Sysfs{log: log, root: root, mapping: mapping}
	for sig, gpio := range mapping {
		if err := d.export(gpio); err != nil {
			return nil, fmt.Errorf("failed to export gpio%d (%s): %w", gpio, sig, err)
		}
		if err := os.WriteFile(d.pinPath(gpio, "direction"), []byte("out"), 0644); err != nil {
			return nil, fmt.Errorf("failed to set gpio%d direction: %w", gpio, err)
		}
		if err := d.write(gpio, Low); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Sysfs) export(gpio int) error {
	if _, err := os.Stat(d.pinPath(gpio, "")); err == nil {
		// Линия уже экспортирована после прошлого запуска.
		return nil
	}
	if err := os.WriteFile(filepath.Join(d.root, "export"), []byte(fmt.Sprintf("%d", gpio)), 0644); err != nil {
		return err
	}
	// Ядру нужно время выставить права на файлы линии.
	time.Sleep(50 * time.Millisecond)
	return nil
}

// SetLevel выставляет уровень линии.
func (d *Sysfs) SetLevel(sig Signal, level Level) error {
	gpio, ok := d.mapping[sig]
	if !ok {
		return fmt.Errorf("no gpio mapped for signal %s", sig)
	}
	if err := d.write(gpio, level); err != nil {
		return fmt.Errorf("failed to drive %s: %w", sig, err)
	}
	d.log.With(logger.Fields{"module": "pins"}).Debugf("gpio%d (%s) -> %s", gpio, sig, level)
	return nil
}

func (d *Sysfs) write(gpio int, level Level) error {
	v := "0"
	if level == High {
		v = "1"
	}
	return os.WriteFile(d.pinPath(gpio, "value"), []byte(v), 0644)
}

// Close опускает все линии. Линии остаются экспортированными.
func (d *Sysfs) Close() error {
	for _, gpio := range d.mapping {
		if err := d.write(gpio, Low); err != nil {
			return err
		}
	}
	return nil
}

func (d *Sysfs) pinPath(gpio int, file string) string {
	return filepath.Join(d.root, fmt.Sprintf("gpio%d", gpio), file)
}
