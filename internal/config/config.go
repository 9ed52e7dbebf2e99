package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config структура конфигурации
type Config struct {
	Port           string
	JWTSecret      string
	DatabaseURL    string
	DatabaseConfig DatabaseConfig
	MongoConfig    MongoConfig
	MatchingConfig MatchingConfig
	StoreDriver    string
	StoreTimeout   time.Duration
	AppEnv         string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// MongoConfig содержит конфигурацию MongoDB
type MongoConfig struct {
	URI      string
	Database string
}

// MatchingConfig содержит параметры подбора обменов и цепочек
type MatchingConfig struct {
	MaxValueRatio     float64
	MinScore          int
	ResultCap         int
	ChainMaxDepth     int
	ChainPoolLimit    int
	ScarcityWeighting bool
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}

	return cfg
}

// FromEnv собирает конфигурацию из переменных окружения без проверки
func FromEnv() *Config {
	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "swapy_user"),
		Password: getEnv("PGPASSWORD", "swapy_pass"),
		Name:     getEnv("PGDATABASE", "swapy"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
		MaxConns: int32(getEnvInt("PGMAXCONNS", 10)),
		MinConns: int32(getEnvInt("PGMINCONNS", 2)),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	mongoConfig := MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		Database: getEnv("MONGO_DATABASE", "swapy"),
	}

	matchingConfig := MatchingConfig{
		MaxValueRatio:     getEnvFloat("MATCH_MAX_VALUE_RATIO", 0.30),
		MinScore:          getEnvInt("MATCH_MIN_SCORE", 50),
		ResultCap:         getEnvInt("MATCH_RESULT_CAP", 20),
		ChainMaxDepth:     getEnvInt("CHAIN_MAX_DEPTH", 4),
		ChainPoolLimit:    getEnvInt("CHAIN_POOL_LIMIT", 500),
		ScarcityWeighting: getEnvBool("MATCH_SCARCITY_WEIGHTING", false),
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DatabaseURL:    getEnv("DATABASE_URL", dbURL),
		DatabaseConfig: dbConfig,
		MongoConfig:    mongoConfig,
		MatchingConfig: matchingConfig,
		StoreDriver:    getEnv("STORE_DRIVER", StoreDriverPostgres),
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		AppEnv:         getEnv("APP_ENV", "production"), // По умолчанию production
	}
}

// Validate проверяет обязательные и взаимосвязанные параметры
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("не задан JWT_SECRET"))
	}

	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("неизвестный STORE_DRIVER %q", c.StoreDriver))
	}

	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT должен быть положительным"))
	}

	m := c.MatchingConfig
	if m.MaxValueRatio < 0 {
		errs = append(errs, errors.New("MATCH_MAX_VALUE_RATIO не может быть отрицательным"))
	}
	if m.MinScore < 0 || m.MinScore > 100 {
		errs = append(errs, errors.New("MATCH_MIN_SCORE должен быть в диапазоне 0–100"))
	}
	// Перебор цепочек экспоненциален по глубине
	if m.ChainMaxDepth < 2 || m.ChainMaxDepth > 5 {
		errs = append(errs, errors.New("CHAIN_MAX_DEPTH должен быть в диапазоне 2–5"))
	}

	return errors.Join(errs...)
}

// IsProduction сообщает, запущено ли приложение в production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("⚠️ Некорректное значение %s=%q, используем %v", key, value, defaultValue)
	}
	return defaultValue
}
