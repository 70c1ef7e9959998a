package clientmqtt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"vtms/internal/connstate"
	"vtms/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientMQTT структура клиента MQTT.
type ClientMQTT struct {
	ctx       context.Context
	log       logger.Logger
	cfgClient MQTTConf
	client    mqtt.Client
	opts      *mqtt.ClientOptions
	tracker   *connstate.Tracker
	handler   HandlerFunc
}

// MQTTClient is a convenience interface to use within this application.
type MQTTClient interface {
	Start(ctx context.Context) error
	Stop() error
	Publish(topic, payload string)
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf, tracker *connstate.Tracker) *ClientMQTT {
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		tracker:   tracker,
	}
}

// OnMessage регистрирует обработчик входящих сообщений. Вызвать до Start.
func (c *ClientMQTT) OnMessage(h HandlerFunc) {
	c.handler = h
}

// Start подключается к брокеру по политике Retry. При каждом
// (пере)подключении публикуется приветствие и восстанавливаются подписки.
func (c *ClientMQTT) Start(ctx context.Context) error {
	// TODO перенаправить в logger
	if c.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	c.ctx = ctx
	c.tracker.Set(connstate.BusConnecting)

	// Порядок доставки важен: флаги должны падать в том порядке,
	// в котором их поднял маршал.
	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", c.cfgClient.Schema, c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetDefaultPublishHandler(c.messageHandler).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(true).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(c.cfgClient.Retry.Interval).
		SetKeepAlive(30 * time.Second)

	c.client = mqtt.NewClient(c.opts)

	for attempt := 1; c.cfgClient.Retry.Next(attempt); attempt++ {
		c.log.With(logger.Fields{"module": "mqtt"}).Infof(
			"The client %s connects to the MQTT broker %s:%s",
			c.cfgClient.ClientID, c.cfgClient.Host, c.cfgClient.Port)

		token := c.client.Connect()
		select {
		case <-token.Done():
		case <-c.ctx.Done():
			return errors.New("context canceled")
		}

		if token.Error() == nil {
			c.log.With(logger.Fields{"module": "mqtt"}).Infof("Status: %v", c.client.IsConnected())
			return nil
		}

		c.log.With(logger.Fields{"module": "mqtt"}).Errorf("failed with state %v", token.Error())
		if err := c.cfgClient.Retry.Wait(c.ctx); err != nil {
			return err
		}
	}

	return fmt.Errorf("broker unreachable after %d attempts", c.cfgClient.Retry.MaxAttempts)
}

func (c *ClientMQTT) Stop() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(500)
	}
	c.tracker.Set(connstate.Disconnected)
	return nil
}

// connectHandler вызывается и при первом подключении, и при каждом
// восстановлении сессии: подписки и приветствие уходят заново.
func (c *ClientMQTT) connectHandler(_ mqtt.Client) {
	c.log.With(logger.Fields{"module": "mqtt"}).Info("client connected to server")
	c.tracker.Set(connstate.BusConnected)

	if c.cfgClient.Announce.Topic != "" {
		c.Publish(c.cfgClient.Announce.Topic, c.cfgClient.Announce.Message)
	}
	for _, filter := range c.cfgClient.Filters {
		c.sub(filter)
	}
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.With(logger.Fields{"module": "mqtt"}).Errorf("server connect lost: %v\n", err)
	c.tracker.Set(connstate.BusConnecting)
}

// messageHandler передаёт сообщение обработчику узла синхронно,
// в порядке получения.
func (c *ClientMQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	c.log.With(logger.Fields{"module": "mqtt"}).Debugf("received message: %s from topic: %s", msg.Payload(), msg.Topic())
	if c.handler != nil {
		c.handler(msg.Topic(), msg.Payload())
	}
}

func (c *ClientMQTT) sub(topic string) {
	token := c.client.Subscribe(topic, c.cfgClient.Qos, nil)
	go func() {
		topic := topic
		token := token
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.With(logger.Fields{"module": "mqtt"}).Errorf("topic %s subscription error. %v\n", topic, token.Error())
				return
			}
		}
		c.log.With(logger.Fields{"module": "mqtt"}).Debugf("topic %s subscribed\n", topic)
	}()
}

// Publish отправляет сообщение без подтверждения доставки вызывающему:
// ошибка публикации только логируется.
func (c *ClientMQTT) Publish(topic, payload string) {
	token := c.client.Publish(topic, c.cfgClient.Qos, false, payload)
	go func() {
		topic := topic
		token := token
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.With(logger.Fields{"module": "mqtt"}).Errorf("error publish topic %s. %v\n", topic, token.Error())
			}
		}
	}()
}
