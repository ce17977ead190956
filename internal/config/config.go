// Package config тримає конфігурацію середовища та доменні константи.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config збирає всі налаштування, які читаються з середовища.
type Config struct {
	Addr string // адреса HTTP-сервера, напр. ":8080"
	Mode string // "dev" або "release"

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	LogPath  string
	LogLevel string
}

// Load читає .env (якщо є) та збирає Config зі змінних середовища.
func Load() *Config {
	// Відсутність .env не є помилкою: у проді змінні приходять з оточення.
	_ = godotenv.Load()

	return &Config{
		Addr: getenv("ADDR", ":8080"),
		Mode: getenv("MODE", "dev"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "amoura"),
		DBPassword: getenv("DB_PASSWORD", "amoura"),
		DBName:     getenv("DB_NAME", "amouradb"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		JWTSecret: getenv("JWT_SECRET", "dev-only-secret"),

		LogPath:  getenv("LOG_PATH", "logs"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

// DSN повертає рядок підключення PostgreSQL для gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
