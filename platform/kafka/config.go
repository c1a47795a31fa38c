package kafka

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers — список брокеров Kafka, через который подключаются сервисы.
	// Значение зависит от среды выполнения:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// RetryMaxAttempts — максимальное количество попыток обработки/публикации сообщения
	RetryMaxAttempts int `env:"KAFKA_RETRY_MAX_ATTEMPTS" envDefault:"3"`
	// RetryBackoffBase — базовый интервал экспоненциального backoff между попытками
	RetryBackoffBase string `env:"KAFKA_RETRY_BACKOFF_BASE" envDefault:"1s"`
}

// Доменные топики саги оформления заказа.
// Routing key исходной системы один-в-один отображается на имя топика.
const (
	TopicOrderCreated   = "order.created"
	TopicPaymentSuccess = "payment.success"
	TopicPaymentFailure = "payment.failure"
)

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
// Сервисы должны получать актуальные значения через переменные окружения (KAFKA_BROKERS и т.д.).
func DefaultConfig() Config {
	return Config{
		Brokers:          []string{"localhost:19092"},
		RetryMaxAttempts: 3,
		RetryBackoffBase: "1s",
	}
}
