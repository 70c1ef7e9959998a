package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vtms/internal/clientmqtt"
	"vtms/internal/config"
	"vtms/internal/connstate"
	"vtms/internal/dispatch"
	"vtms/internal/gps"
	"vtms/internal/logger"
	"vtms/internal/netjoin"
	"vtms/internal/obd"
	"vtms/internal/topics"

	"github.com/joho/godotenv"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/obdclient.toml", "Path to configuration file")
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	tracker := connstate.NewTracker(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	joiner := netjoin.NewJoiner(log, tracker, cfg.Net.Interface, cfg.Net.PollInterval.Duration)
	handle, err := joiner.Join(ctx)
	if err != nil {
		log.Error("network join aborted:", err.Error())
		os.Exit(1)
	}

	client := clientmqtt.NewClient(log, convertConfigClientMQTT(cfg.MQTT, handle), tracker)
	obdClient := obd.NewClient(log, cfg.OBD.Port, cfg.OBD.BaudRate)

	router := dispatch.NewRouter(log)
	router.Handle(topics.Debug, dispatch.DebugLevelHandler(log, cfg.Logger.Level))
	router.Handle(topics.Message, func(_ string, payload []byte) {
		log.Info("Pit message: ", string(payload))
	})
	router.Handle(topics.Pit, func(_ string, payload []byte) {
		log.Warn("Pit soon: ", string(payload))
	})
	router.Handle(topics.Box, func(_ string, payload []byte) {
		log.Warn("Box box box: ", string(payload))
	})
	router.HandlePrefix(topics.FlagPrefix, func(topic string, payload []byte) {
		log.Warn("Flag ", topic, ": ", string(payload))
	})
	router.Handle(topics.OBDQuery, func(_ string, payload []byte) {
		cmd, ok := obd.CommandByName(string(payload))
		if !ok {
			log.With(logger.Fields{"module": "obd"}).Warnf("unknown metric requested: %s", payload)
			return
		}
		v, err := obdClient.Query(cmd)
		if err != nil {
			log.With(logger.Fields{"module": "obd"}).Errorf("query %s: %v", cmd.Name, err)
			return
		}
		client.Publish(topics.Metric(cmd.Name), obd.FormatValue(v))
	})
	client.OnMessage(func(topic string, payload []byte) {
		router.Route(topic, payload)
	})

	if err = client.Start(ctx); err != nil {
		log.Error("failed to start MQTT service:", err.Error())
		cancel()
	}

	go runOBD(ctx, log, client, obdClient, cfg.OBD)

	var gpsReader *gps.Reader
	if cfg.GPS.Enabled {
		gpsReader = gps.NewReader(log, cfg.GPS.Port, cfg.GPS.BaudRate)
		if err := gpsReader.Connect(); err != nil {
			log.With(logger.Fields{"module": "gps"}).Errorf("GPS monitoring disabled. %v", err)
			gpsReader = nil
		} else {
			gps.NewPublisher(log, client, cfg.GPS.PublishInterval.Duration).Start(ctx, gpsReader.Fixes())
		}
	}

	<-ctx.Done()

	if err := client.Stop(); err != nil {
		log.Error("failed to stop MQTT service:", err.Error())
	}

	if err := obdClient.Close(); err != nil {
		log.Error("failed to close the OBDII adapter:", err.Error())
	}

	if gpsReader != nil {
		if err := gpsReader.Close(); err != nil {
			log.Error("failed to close the GPS receiver:", err.Error())
		}
	}

	log.Info("shutdown complete")
}

// runOBD ищет адаптер с фиксированной паузой между попытками и,
// подключившись, запускает опрос поддерживаемых метрик.
func runOBD(ctx context.Context, log logger.Logger, bus obd.Bus, obdClient *obd.Client, cfg config.OBDConf) {
	for {
		if err := obdClient.Connect(); err != nil {
			log.With(logger.Fields{"module": "obd"}).Warnf("no OBDII connection, retrying: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(cfg.RetryDelay.Duration):
			}
			continue
		}

		commands, err := obdClient.Supported()
		if err != nil || len(commands) == 0 {
			// Карту поддержки получить не удалось - опрашиваем всё подряд.
			commands = obd.Commands
		}
		log.With(logger.Fields{"module": "obd"}).Infof("watching %d metrics", len(commands))

		obd.NewMonitor(log, bus, obdClient, commands, cfg.PollInterval.Duration).Start(ctx)
		return
	}
}

// convertConfigClientMQTT преобразует структуры.
func convertConfigClientMQTT(cfg config.MQTTConf, handle *netjoin.Handle) clientmqtt.MQTTConf {
	return clientmqtt.MQTTConf{
		ClientID: clientmqtt.ClientID(cfg.IDPrefix, handle.HardwareAddr),
		Schema:   "tcp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Qos:      cfg.Qos,
		Retry: clientmqtt.RetryPolicy{
			Interval:    cfg.RetryInterval.Duration,
			MaxAttempts: cfg.MaxAttempts,
		},
		Announce: clientmqtt.Announcement{
			Topic:   topics.Status,
			Message: "Hi, I'm VTMS Client",
		},
		Filters: []string{topics.Status, topics.LemonsAll},
	}
}
