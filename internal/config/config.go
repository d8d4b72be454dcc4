// config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI         string
	MongoDBName      string
	AuthURL          string
	RabbitURL        string
	Port             string
	HeartbeatSeconds int
}

func Load() *Config {
	// .env es opcional; si no existe se usan las variables del entorno.
	_ = godotenv.Load()

	return &Config{
		MongoURI:         getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "order_tracking_db"),
		AuthURL:          getEnv("AUTH_SERVICE_URL", "http://host.docker.internal:3000"),
		RabbitURL:        getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:             getEnv("PORT", "8080"),
		HeartbeatSeconds: getEnvInt("WS_HEARTBEAT_SECONDS", 30),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
