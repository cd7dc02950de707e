package config

import (
	"os"

	"github.com/yashrajoria/shopping-cart-backend/pkg/contracts"
)

// Config carries everything the cart service needs at construction time.
// Nothing reads the environment after Load returns.
type Config struct {
	Port            string
	Env             string
	CartTableName   string
	EventBusName    string
	EventSource     string
	EventDetailType string
	AckQueueURL     string
}

func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8086"),
		Env:             getEnv("APP_ENV", "development"),
		CartTableName:   getEnv("CART_TABLE_NAME", "cart"),
		EventBusName:    getEnv("EVENT_BUS_NAME", "ShoppingCartEventBus"),
		EventSource:     getEnv("EVENT_SOURCE", contracts.SourceCartCheckout),
		EventDetailType: getEnv("EVENT_DETAIL_TYPE", contracts.DetailTypeCartCheckout),
		AckQueueURL:     getEnv("ACK_QUEUE_URL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
