package clientmqtt

// MQTTConf параметры сессии с брокером.
type MQTTConf struct {
	ClientID string // ClientID - уникальное имя клиента для брокера (см. ClientID()).
	Schema   string // Schema - тип подключения.
	Host     string // Host - адрес MQTT сервера.
	Port     string // Port - порт MQTT сервера.
	User     string // User - логин для подключения к MQTT серверу.
	Password string // Password - пароль для подключения к MQTT серверу.
	Qos      byte   // Qos - качество обслуживания.

	Retry    RetryPolicy  // Retry - политика повторных попыток подключения.
	Announce Announcement // Announce - приветствие, публикуется при каждом подключении.
	Filters  []string     // Filters - фильтры подписки, регистрируются после подключения.
}

// Announcement сообщение-приветствие узла.
type Announcement struct {
	Topic   string
	Message string
}

// HandlerFunc обработчик входящего сообщения. Вызывается синхронно,
// в порядке доставки от брокера.
type HandlerFunc func(topic string, payload []byte)
