package netjoin

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"vtms/internal/connstate"
	"vtms/internal/logger"
)

// Handle результат подключения к сети.
type Handle struct {
	Interface    string           // Interface - имя интерфейса.
	IP           net.IP           // IP - назначенный IPv4 адрес.
	HardwareAddr net.HardwareAddr // HardwareAddr - MAC адрес, источник идентификатора клиента.
}

// Joiner опрашивает сетевые интерфейсы до появления связи.
type Joiner struct {
	log          logger.Logger
	ifaceName    string
	pollInterval time.Duration
	tracker      *connstate.Tracker
	interfaces   func() ([]net.Interface, error)
}

// NewJoiner конструктор. ifaceName пустой - подходит любой активный интерфейс.
func NewJoiner(log logger.Logger, tracker *connstate.Tracker, ifaceName string, pollInterval time.Duration) *Joiner {
	return &Joiner{
		log:          log,
		ifaceName:    ifaceName,
		pollInterval: pollInterval,
		tracker:      tracker,
		interfaces:   net.Interfaces,
	}
}

// Join блокирует до появления активного интерфейса с адресом.
// Лимита попыток нет, выход только через ctx.
func (j *Joiner) Join(ctx context.Context) (*Handle, error) {
	j.tracker.Set(connstate.NetworkJoining)
	for {
		h, err := j.probe()
		if err != nil {
			j.log.With(logger.Fields{"module": "netjoin"}).Errorf("error listing interfaces: %v", err)
		}
		if h != nil {
			j.log.With(logger.Fields{"module": "netjoin"}).Infof(
				"Connected to the network: %s (%s, %s)", h.Interface, h.IP, h.HardwareAddr)
			j.tracker.Set(connstate.NetworkJoined)
			return h, nil
		}

		j.log.With(logger.Fields{"module": "netjoin"}).Info("Connecting to the network..")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(j.pollInterval):
		}
	}
}

// probe ищет поднятый интерфейс с IPv4 адресом.
func (j *Joiner) probe() (*Handle, error) {
	ifaces, err := j.interfaces()
	if err != nil {
		return nil, fmt.Errorf("error getting interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if j.ifaceName != "" && iface.Name != j.ifaceName {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			if strings.Contains(ip.String(), ":") {
				continue
			}
			return &Handle{
				Interface:    iface.Name,
				IP:           ip,
				HardwareAddr: iface.HardwareAddr,
			}, nil
		}
	}
	return nil, nil
}
