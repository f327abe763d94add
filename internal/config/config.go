package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN,required=true"`
	RedisURL            string `env:"REDIS_URL,required=true"`
	SMSEndpoint         string `env:"SMS_ENDPOINT"`
	SMSAPIKey           string `env:"SMS_API_KEY"`
	SMSSenderID         string `env:"SMS_SENDER_ID,default=GYMNOTIFY"`
	OrgName             string `env:"ORG_NAME,default=YourGym"`
	ScanIntervalMinutes int    `env:"SCAN_INTERVAL_MINUTES,default=1440"`
	DispatchConcurrency int    `env:"DISPATCH_CONCURRENCY,default=8"`
	SendTimeoutSeconds  int    `env:"SEND_TIMEOUT_SECONDS,default=10"`
	RateLimitPerSec     int    `env:"RATE_LIMIT_PER_SEC,default=20"`
	SweepIntervalSecs   int    `env:"SWEEP_INTERVAL_SECONDS,default=60"`
	ClaimMaxAgeSecs     int    `env:"CLAIM_MAX_AGE_SECONDS,default=300"`
	APIPort             int    `env:"API_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
