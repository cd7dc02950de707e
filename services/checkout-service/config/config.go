package config

import "os"

// Config carries everything the checkout service needs at construction
// time. Nothing reads the environment after Load returns.
type Config struct {
	Port             string
	Env              string
	OrderTableName   string
	CheckoutQueueURL string
	AckTopicARN      string
	RedisURL         string
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8087"),
		Env:              getEnv("APP_ENV", "development"),
		OrderTableName:   getEnv("ORDER_TABLE_NAME", "checkout"),
		CheckoutQueueURL: getEnv("CHECKOUT_QUEUE_URL", ""),
		AckTopicARN:      getEnv("ACK_TOPIC_ARN", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
