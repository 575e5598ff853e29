package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	AWSRegion string `envconfig:"AWS_REGION" default:"eu-central-1"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	OrderTableName   string `envconfig:"ORDER_TABLE_NAME" default:"orders-table"`
	UserTableName    string `envconfig:"USER_TABLE_NAME" default:"users-table"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"twaybastore-admin"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Hung adjustments release their key after this long.
	StockAdjustTimeout time.Duration `envconfig:"STOCK_ADJUST_TIMEOUT" default:"15s"`

	ImageBucket  string `envconfig:"IMAGE_BUCKET" default:"twaybastore-images"`
	ImageBaseURL string `envconfig:"IMAGE_BASE_URL" default:"https://images.twaybastore.com"`

	SMTPHost string `envconfig:"SMTP_HOST" default:""`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER" default:""`
	SMTPPass string `envconfig:"SMTP_PASS" default:""`
	SMTPFrom string `envconfig:"SMTP_FROM" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
