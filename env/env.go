package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	MongoURL  string
	MongoDB   string
	RedisHost string
	RedisDB   int
	JWTSecret string
}

// Load reads the process environment, with a local .env file as fallback.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      GetEnv("PORT", "8080"),
		MongoURL:  GetEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:   GetEnv("MONGO_DB", "editor"),
		RedisHost: GetEnv("REDIS_HOST", ""),
		RedisDB:   GetEnv("REDIS_DB", 0),
		JWTSecret: GetEnv("JWT_SECRET", ""),
	}
}

func GetEnv[T any](nameEnv string, defaultValue T) T {
	valueStr := os.Getenv(nameEnv)
	if valueStr == "" {
		return defaultValue
	}

	var value any

	switch any(defaultValue).(type) {
	case int:
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		value = v
	case bool:
		v, err := strconv.ParseBool(valueStr)
		if err != nil {
			return defaultValue
		}
		value = v
	case float64:
		v, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return defaultValue
		}
		value = v
	default:
		value = valueStr
	}

	return value.(T)
}
