package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendAuto     = "auto"
	BackendMemory   = "memory"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
	BackendRabbitMQ = "rabbitmq"
)

type Config struct {
	HTTPAddr   string
	InstanceID string

	StoreBackend string
	FeedBackend  string

	MySQLDSN     string
	RedisURL     string
	RedisChannel string

	RabbitMQURL         string
	RabbitExchange      string
	RabbitQueue         string
	RabbitRoutingKey    string
	RabbitConsumerTag   string
	RabbitPublishPrefix string
	RabbitSyncExchange  string

	NotificationsKey string
	LastVisitKey     string
	MaxNotifications int
	TransientTTL     time.Duration
	StorageTimeout   time.Duration
	SyncRetryInitial time.Duration
	SyncRetryMax     time.Duration

	ChimeEnabled   bool
	ChimeFrequency float64
	ChimeDuration  time.Duration

	SSEHeartbeat time.Duration
	LogFile      string

	OTELServiceName string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:            ":8080",
		StoreBackend:        BackendAuto,
		FeedBackend:         BackendAuto,
		RedisChannel:        "notification_center:storage",
		RabbitExchange:      "notifications",
		RabbitQueue:         "notifications.inbox",
		RabbitRoutingKey:    "notification.*",
		RabbitConsumerTag:   "notification-center",
		RabbitPublishPrefix: "notification",
		RabbitSyncExchange:  "storage.sync",
		NotificationsKey:    "admin_notifications",
		LastVisitKey:        "admin_notifications_last_visit",
		MaxNotifications:    10,
		TransientTTL:        5 * time.Second,
		StorageTimeout:      2 * time.Second,
		SyncRetryInitial:    500 * time.Millisecond,
		SyncRetryMax:        30 * time.Second,
		ChimeEnabled:        true,
		ChimeFrequency:      880,
		ChimeDuration:       250 * time.Millisecond,
		SSEHeartbeat:        15 * time.Second,
		LogFile:             "logs/app.log",
		OTELServiceName:     "notification-center",
		OTLPInsecure:        true,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	cfg.InstanceID = os.Getenv("INSTANCE_ID")
	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")

	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.FeedBackend, "FEED_BACKEND")
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	cfg.FeedBackend = strings.ToLower(cfg.FeedBackend)

	setString(&cfg.RedisChannel, "REDIS_CHANNEL")
	setString(&cfg.RabbitExchange, "RABBITMQ_EXCHANGE")
	setString(&cfg.RabbitQueue, "RABBITMQ_QUEUE")
	setString(&cfg.RabbitRoutingKey, "RABBITMQ_ROUTING_KEY")
	setString(&cfg.RabbitConsumerTag, "RABBITMQ_CONSUMER_TAG")
	setString(&cfg.RabbitPublishPrefix, "RABBITMQ_PUBLISH_PREFIX")
	setString(&cfg.RabbitSyncExchange, "RABBITMQ_SYNC_EXCHANGE")
	setString(&cfg.NotificationsKey, "NOTIFICATIONS_KEY")
	setString(&cfg.LastVisitKey, "LAST_VISIT_KEY")
	setString(&cfg.LogFile, "LOG_FILE")

	setString(&cfg.OTELServiceName, "OTEL_SERVICE_NAME")
	setString(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTLPInsecure, "OTEL_EXPORTER_OTLP_INSECURE")
	setBool(&cfg.ChimeEnabled, "CHIME_ENABLED")

	if v := os.Getenv("MAX_NOTIFICATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxNotifications = n
		}
	}
	if v := os.Getenv("CHIME_FREQUENCY_HZ"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ChimeFrequency = f
		}
	}

	setMillis(&cfg.TransientTTL, "TRANSIENT_TTL_MS")
	setMillis(&cfg.StorageTimeout, "STORAGE_TIMEOUT_MS")
	setMillis(&cfg.SyncRetryInitial, "SYNC_RETRY_INITIAL_MS")
	setMillis(&cfg.SyncRetryMax, "SYNC_RETRY_MAX_MS")
	setMillis(&cfg.ChimeDuration, "CHIME_DURATION_MS")

	if v := os.Getenv("SSE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSEHeartbeat = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// StorageBackend resolves "auto" against the configured connection strings.
func (c *Config) StorageBackend() string {
	if c.StoreBackend != "" && c.StoreBackend != BackendAuto {
		return c.StoreBackend
	}
	switch {
	case c.MySQLDSN != "":
		return BackendMySQL
	case c.RedisURL != "":
		return BackendRedis
	default:
		return BackendMemory
	}
}

// ChangeFeedBackend resolves "auto" for the cross-instance change feed.
func (c *Config) ChangeFeedBackend() string {
	if c.FeedBackend != "" && c.FeedBackend != BackendAuto {
		return c.FeedBackend
	}
	switch {
	case c.RabbitMQURL != "":
		return BackendRabbitMQ
	case c.RedisURL != "":
		return BackendRedis
	default:
		return BackendMemory
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setMillis(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = time.Duration(n) * time.Millisecond
		}
	}
}
