package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config структура конфигурации узла.
type Config struct {
	Logger   LogConf      // Logger - конфигурация регистратора.
	Net      NetConf      // Net - конфигурация подключения к сети.
	MQTT     MQTTConf     // MQTT - конфигурация MQTT клиента.
	Sensor   SensorConf   // Sensor - конфигурация датчика.
	Recorder RecorderConf // Recorder - конфигурация записи телеметрии.
	OBD      OBDConf      // OBD - конфигурация адаптера OBD-II.
	GPS      GPSConf      // GPS - конфигурация GPS приёмника.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level"` // Level - уровень логирования.
}

// NetConf структура конфигурации.
type NetConf struct {
	Interface    string   `toml:"interface"`     // Interface - имя сетевого интерфейса (пусто - любой активный).
	PollInterval Duration `toml:"poll-interval"` // PollInterval - период опроса состояния сети.
}

// MQTTConf структура конфигурации.
type MQTTConf struct {
	Host          string   `toml:"server"`         // Host - адрес MQTT сервера.
	Port          string   `toml:"port"`           // Port - порт MQTT сервера.
	User          string   `toml:"user"`           // User - логин для подключения к MQTT серверу.
	Password      string   `toml:"password"`       // Password - пароль для подключения к MQTT серверу.
	IDPrefix      string   `toml:"id-prefix"`      // IDPrefix - префикс имени клиента, к нему добавляется MAC адрес.
	Qos           byte     `toml:"qos"`            // Qos - качество обслуживания.
	RetryInterval Duration `toml:"retry-interval"` // RetryInterval - пауза между попытками подключения.
	MaxAttempts   int      `toml:"max-attempts"`   // MaxAttempts - лимит попыток (0 - без лимита).
}

// SensorConf структура конфигурации.
type SensorConf struct {
	Port            string   `toml:"port"`             // Port - последовательный порт платы АЦП.
	BaudRate        int      `toml:"baud-rate"`        // BaudRate - скорость порта.
	VRef            float32  `toml:"vref"`             // VRef - опорное напряжение АЦП, В.
	AverageSamples  int      `toml:"average-samples"`  // AverageSamples - окно усреднения (0 - без усреднения).
	PublishInterval Duration `toml:"publish-interval"` // PublishInterval - период публикации.
}

// RecorderConf структура конфигурации.
type RecorderConf struct {
	Path string `toml:"path"` // Path - путь к файлу базы данных.
}

// OBDConf структура конфигурации.
type OBDConf struct {
	Port         string   `toml:"port"`          // Port - порт адаптера ELM327 (пусто - перебор всех портов).
	BaudRate     int      `toml:"baud-rate"`     // BaudRate - скорость порта.
	RetryDelay   Duration `toml:"retry-delay"`   // RetryDelay - пауза между попытками найти адаптер.
	PollInterval Duration `toml:"poll-interval"` // PollInterval - период опроса метрик.
}

// GPSConf структура конфигурации.
type GPSConf struct {
	Enabled         bool     `toml:"enabled"`          // Enabled - включает GPS телеметрию.
	Port            string   `toml:"port"`             // Port - порт GPS приёмника.
	BaudRate        int      `toml:"baud-rate"`        // BaudRate - скорость порта.
	PublishInterval Duration `toml:"publish-interval"` // PublishInterval - период публикации позиции.
}

// NewConfig конструктор. Без файла конфигурации узел работает
// на константах исходной прошивки.
func NewConfig(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Default возвращает конфигурацию с константами исходной прошивки.
func Default() *Config {
	return &Config{
		Logger: LogConf{Level: "info"},
		Net: NetConf{
			PollInterval: Duration{500 * time.Millisecond},
		},
		MQTT: MQTTConf{
			Host:          "192.168.50.24",
			Port:          "1883",
			IDPrefix:      "esp32-client-",
			RetryInterval: Duration{2 * time.Second},
		},
		Sensor: SensorConf{
			Port:            "/dev/ttyUSB0",
			BaudRate:        115200,
			VRef:            3.3,
			PublishInterval: Duration{500 * time.Millisecond},
		},
		Recorder: RecorderConf{Path: "data/logger.db"},
		OBD: OBDConf{
			BaudRate:     38400,
			RetryDelay:   Duration{15 * time.Second},
			PollInterval: Duration{time.Second},
		},
		GPS: GPSConf{
			Enabled:         true,
			Port:            "/dev/ttyACM0",
			BaudRate:        9600,
			PublishInterval: Duration{time.Second},
		},
	}
}

// ApplyEnv переопределяет адрес брокера и учётные данные из окружения.
// Файл .env загружается в main до чтения конфигурации.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("VTMS_MQTT_SERVER"); ok {
		c.MQTT.Host = v
	}
	if v, ok := os.LookupEnv("VTMS_MQTT_PORT"); ok {
		c.MQTT.Port = v
	}
	if v, ok := os.LookupEnv("VTMS_MQTT_USER"); ok {
		c.MQTT.User = v
	}
	if v, ok := os.LookupEnv("VTMS_MQTT_PASSWORD"); ok {
		c.MQTT.Password = v
	}
}

// Duration обёртка для разбора интервалов в TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}
