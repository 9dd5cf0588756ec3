package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	PostgresDSN   string
	RunMigrations bool
	KafkaBrokers  []string
	RedisAddr     string
	LogLevel      string

	RabbitMQURL      string
	RabbitMQExchange string
	OTLPEndpoint     string

	PacketMaxCreateSkew       time.Duration
	PacketMinValidity         time.Duration
	PacketClaimsCloseAtExpiry bool
	PacketRandomSource        string
	ClaimRateLimitPerMinute   int
	OutboxPollInterval        time.Duration
	OutboxBatchSize           int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "redpacket"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	maxSkew, err := envDuration("PACKET_MAX_CREATE_SKEW", 120*time.Second)
	if err != nil {
		return Config{}, err
	}
	minValidity, err := envDuration("PACKET_MIN_VALIDITY", time.Minute)
	if err != nil {
		return Config{}, err
	}
	pollInterval, err := envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	if maxSkew <= 0 || minValidity < 0 || pollInterval <= 0 {
		return Config{}, fmt.Errorf("packet durations must be positive")
	}
	rateLimit, err := envInt("CLAIM_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return Config{}, err
	}
	batchSize, err := envInt("OUTBOX_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, err
	}

	randomSource := strings.ToLower(strings.TrimSpace(os.Getenv("PACKET_RANDOM_SOURCE")))
	if randomSource == "" {
		randomSource = "crypto"
	}
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RunMigrations: envBool("RUN_MIGRATIONS", true),
		KafkaBrokers:  brokers,
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		LogLevel:      logLevel,

		RabbitMQURL:      strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		RabbitMQExchange: envString("RABBITMQ_EXCHANGE", "redpacket.events"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),

		PacketMaxCreateSkew:       maxSkew,
		PacketMinValidity:         minValidity,
		PacketClaimsCloseAtExpiry: envBool("PACKET_CLAIMS_CLOSE_AT_EXPIRY", true),
		PacketRandomSource:        randomSource,
		ClaimRateLimitPerMinute:   rateLimit,
		OutboxPollInterval:        pollInterval,
		OutboxBatchSize:           batchSize,
	}, nil
}

func envString(name string, fallback string) string {
	if raw := strings.TrimSpace(os.Getenv(name)); raw != "" {
		return raw
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return value, nil
}
