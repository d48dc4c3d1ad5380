package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig хранит конфигурацию для БД
type DBConfig struct {
	URL      string
	MaxConns int32
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled           bool
	URL               string
	ReconnectInterval time.Duration
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Tag     string
	Level   string
}

type RestConfig struct {
	Port string
}

// EgressConfig - пул исходящих идентификаторов
type EgressConfig struct {
	Proxies  []string
	PoolSize int
	Direct   bool
}

type FetchConfig struct {
	Timeout       time.Duration
	DetailTimeout time.Duration
	MaxRPS        float64
}

type SchedulerConfig struct {
	QuickInterval   time.Duration
	FullInterval    time.Duration
	FullMaxPages    int
	StartupBackoff  time.Duration
	StartupAttempts int
	RateLimitPause  time.Duration
}

type SourcesConfig struct {
	Enabled                  []string
	File                     string
	WillhabenRequireDistrict bool
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName        string
	CursorStore    string
	PipelineBuffer int
	Database       DBConfig
	RabbitMQ       RabbitMQConfig
	FluentBit      FluentBitConfig
	StdoutLogger   StdoutLogConfig
	Rest           RestConfig
	Egress         EgressConfig
	Fetch          FetchConfig
	Scheduler      SchedulerConfig
	Sources        SourcesConfig
}

const (
	CursorStorePostgres = "postgres"
	CursorStoreMemory   = "memory"
)

// LoadConfig загружает конфигурацию из переменных окружения.
// Отсутствие .env не ошибка: в контейнере все приходит из окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "immo-parser-service")
	cfg.PipelineBuffer = getEnvAsInt("PIPELINE_BUFFER", 64)

	cfg.CursorStore = strings.ToLower(getEnvAsString("CURSOR_STORE", CursorStorePostgres))
	switch cfg.CursorStore {
	case CursorStorePostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when CURSOR_STORE=%s", CursorStorePostgres)
		}
		cfg.Database.MaxConns = int32(getEnvAsInt("DATABASE_MAX_CONNS", 4))
	case CursorStoreMemory:
	default:
		return nil, fmt.Errorf("unknown CURSOR_STORE %q, expected %q or %q", cfg.CursorStore, CursorStorePostgres, CursorStoreMemory)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.ReconnectInterval = getEnvAsDuration("RABBITMQ_RECONNECT_INTERVAL", 5*time.Second)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Tag = getEnvAsString("FLUENTBIT_TAG", cfg.AppName)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	cfg.Rest.Port = getEnvAsString("HTTP_PORT", "8080")

	// без прокси или с EGRESS_DIRECT=true запросы идут напрямую
	cfg.Egress.Proxies = getEnvAsStringSlice("EGRESS_PROXY_URLS", nil)
	cfg.Egress.PoolSize = getEnvAsInt("EGRESS_POOL_SIZE", 2)
	cfg.Egress.Direct = getEnvAsBool("EGRESS_DIRECT", false)

	cfg.Fetch.Timeout = getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second)
	cfg.Fetch.DetailTimeout = getEnvAsDuration("FETCH_DETAIL_TIMEOUT", 45*time.Second)
	cfg.Fetch.MaxRPS = getEnvAsFloat("FETCH_MAX_RPS", 2)

	cfg.Scheduler.QuickInterval = getEnvAsDuration("QUICK_CHECK_INTERVAL", 5*time.Minute)
	cfg.Scheduler.FullInterval = getEnvAsDuration("FULL_SCRAPE_INTERVAL", time.Hour)
	cfg.Scheduler.FullMaxPages = getEnvAsInt("FULL_SCRAPE_MAX_PAGES", 3)
	cfg.Scheduler.StartupBackoff = getEnvAsDuration("STARTUP_BACKOFF", 10*time.Second)
	cfg.Scheduler.StartupAttempts = getEnvAsInt("STARTUP_MAX_ATTEMPTS", 3)
	cfg.Scheduler.RateLimitPause = getEnvAsDuration("RATE_LIMIT_PAUSE", 60*time.Second)
	if cfg.Scheduler.QuickInterval <= 0 || cfg.Scheduler.FullInterval <= 0 {
		return nil, fmt.Errorf("QUICK_CHECK_INTERVAL and FULL_SCRAPE_INTERVAL must be positive")
	}
	if cfg.Scheduler.FullMaxPages < 1 {
		return nil, fmt.Errorf("FULL_SCRAPE_MAX_PAGES must be at least 1, got %d", cfg.Scheduler.FullMaxPages)
	}

	cfg.Sources.Enabled = getEnvAsStringSlice("ENABLED_SOURCES", []string{"willhaben", "immoscout", "derstandard"})
	if len(cfg.Sources.Enabled) == 0 {
		return nil, fmt.Errorf("ENABLED_SOURCES must name at least one source")
	}
	cfg.Sources.File = os.Getenv("SOURCES_FILE")
	cfg.Sources.WillhabenRequireDistrict = getEnvAsBool("WILLHABEN_REQUIRE_DISTRICT", false)

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration принимает формат time.ParseDuration ("90s", "5m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice делит значение по запятым, пустые элементы отбрасываются
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
