package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vtms/internal/clientmqtt"
	"vtms/internal/config"
	"vtms/internal/connstate"
	"vtms/internal/dispatch"
	"vtms/internal/logger"
	"vtms/internal/netjoin"
	"vtms/internal/recorder"
	"vtms/internal/topics"

	"github.com/joho/godotenv"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/recorder.toml", "Path to configuration file")
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

	log.Info("Not Fast Not Furious!")

	tracker := connstate.NewTracker(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	joiner := netjoin.NewJoiner(log, tracker, cfg.Net.Interface, cfg.Net.PollInterval.Duration)
	handle, err := joiner.Join(ctx)
	if err != nil {
		log.Error("network join aborted:", err.Error())
		os.Exit(1)
	}

	store, err := recorder.NewStore(log, cfg.Recorder.Path)
	if err != nil {
		log.With(logger.Fields{"module": "recorder"}).Errorf("error while opening the database. %v", err)
		os.Exit(1)
	}

	router := dispatch.NewRouter(log)
	router.Handle(topics.Debug, dispatch.DebugLevelHandler(log, cfg.Logger.Level))

	client := clientmqtt.NewClient(log, convertConfigClientMQTT(cfg.MQTT, handle), tracker)
	client.OnMessage(func(topic string, payload []byte) {
		// Записывается всё, включая служебные команды.
		router.Route(topic, payload)
		store.Write(topic, payload)
	})

	if err = client.Start(ctx); err != nil {
		log.Error("failed to start MQTT service:", err.Error())
		cancel()
	}

	<-ctx.Done()

	if err := client.Stop(); err != nil {
		log.Error("failed to stop MQTT service:", err.Error())
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close the database:", err.Error())
	}

	log.Info("shutdown complete")
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
			Message: "Hi, I'm VTMS Recorder",
		},
		Filters: []string{topics.Status, topics.LemonsAll},
	}
}
