// config.go
package config

import "os"

type Config struct {
	MongoURI     string
	MongoDBName  string
	RedisAddr    string
	StoreBackend string // mongo | redis | memory
	AuthURL      string
	RabbitURL    string
	OrdersURL    string
	Port         string
	AppEnv       string
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:  getEnv("MONGO_DB_NAME", "order_timeline_db"),
		RedisAddr:    getEnv("REDIS_ADDR", "host.docker.internal:6379"),
		StoreBackend: getEnv("STORE_BACKEND", "mongo"),
		AuthURL:      getEnv("AUTH_SERVICE_URL", "http://host.docker.internal:3000"),
		RabbitURL:    getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		OrdersURL:    getEnv("ORDERS_URL", "http://host.docker.internal:3004"),
		Port:         getEnv("PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
