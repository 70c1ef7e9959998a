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
	"vtms/internal/logger"
	"vtms/internal/netjoin"
	"vtms/internal/sensor"
	"vtms/internal/telemetry"
	"vtms/internal/topics"

	"github.com/joho/godotenv"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/voltsense.toml", "Path to configuration file")
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

	if err = client.Start(ctx); err != nil {
		log.Error("failed to start MQTT service:", err.Error())
		cancel()
	}

	source := sensor.NewSerial(log, cfg.Sensor.Port, cfg.Sensor.BaudRate)
	if err := source.Connect(); err != nil {
		log.With(logger.Fields{"module": "sensor"}).Errorf("error while connecting the sensor board. %v", err)
		os.Exit(1)
	}

	vref := cfg.Sensor.VRef
	publisher := telemetry.NewPublisher(
		log,
		client,
		topics.TempTransmission,
		cfg.Sensor.PublishInterval.Duration,
		sensor.NewSmoother(cfg.Sensor.AverageSamples),
		func(counts uint16) string {
			return sensor.FormatVolts(sensor.Volts(counts, vref))
		},
	)
	publisher.Start(ctx, source.Samples())

	<-ctx.Done()

	if err := client.Stop(); err != nil {
		log.Error("failed to stop MQTT service:", err.Error())
	}

	if err := source.Close(); err != nil {
		log.Error("failed to close the sensor board:", err.Error())
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
			Message: "Hi, I'm VTMS MQTT Sensor",
		},
		Filters: []string{topics.Status},
	}
}
