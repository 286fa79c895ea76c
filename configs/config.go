package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	AppPort  string
	LogLevel string

	DB        DBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	S3        S3Config
	JWT       JWTConfig
	RateLimit RateLimitConfig
	OTEL      OTELConfig

	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	Name     string
	Replicas []string
	MaxOpen  int
	MaxIdle  int
}

type RedisConfig struct {
	Host string
	Port string
	DB   int
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	LinkTTL   time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RateLimitConfig struct {
	AuthPerWindow  int64
	WritePerWindow int64
	Window         time.Duration
}

type OTELConfig struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// Load reads the environment, after an optional .env file in the working dir.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:      getEnv("ENV", "dev"),
		AppPort:  getEnv("APP_PORT", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "reviews"),
			Pass:     getEnv("DB_PASSWORD", "reviewspass"),
			Name:     getEnv("DB_NAME", "reviews_db"),
			Replicas: splitList(os.Getenv("DB_REPLICAS")),
			MaxOpen:  atoiDef(os.Getenv("DB_MAX_OPEN"), 40),
			MaxIdle:  atoiDef(os.Getenv("DB_MAX_IDLE"), 10),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
			DB:   atoiDef(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "reviews.events"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("S3_BUCKET", "ticket-images"),
			UseSSL:    strings.EqualFold(os.Getenv("S3_USE_SSL"), "true"),
			LinkTTL:   durationDef(os.Getenv("S3_LINK_TTL"), 15*time.Minute),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    durationDef(os.Getenv("JWT_TTL"), 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			AuthPerWindow:  int64(atoiDef(os.Getenv("RL_AUTH_LIMIT"), 10)),
			WritePerWindow: int64(atoiDef(os.Getenv("RL_WRITE_LIMIT"), 60)),
			Window:         durationDef(os.Getenv("RL_WINDOW"), time.Minute),
		},
		OTEL: OTELConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "review-service"),
			SampleRatio: ratioDef(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 1.0),
		},
		AutoMigrate: os.Getenv("AUTO_MIGRATE") == "true",
	}
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Pass, c.Name,
	)
}

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func durationDef(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func ratioDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return def
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
