package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment, loading a local
// .env file first when present. Unset variables leave the current value
// untouched.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.Addr, "POSTLINE_ADDR")
	setString(&config.DatabaseDSN, "POSTLINE_DATABASE_DSN")
	setString(&config.SecretKey, "POSTLINE_SECRET_KEY")
	setString(&config.OrgID, "POSTLINE_ORG_ID")
	setDuration(&config.SchedulerInterval, "POSTLINE_SCHEDULER_INTERVAL")
	setDuration(&config.DedupWindow, "POSTLINE_DEDUP_WINDOW")
	setString(&config.EnhancerEndpoint, "POSTLINE_ENHANCER_ENDPOINT")
	setString(&config.S3AccessKey, "POSTLINE_S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "POSTLINE_S3_SECRET_KEY")
	setString(&config.S3Bucket, "POSTLINE_S3_BUCKET")
	setString(&config.S3Region, "POSTLINE_S3_REGION")
	setString(&config.S3BaseEndpoint, "POSTLINE_S3_BASE_ENDPOINT")
	setString(&config.DiscordToken, "POSTLINE_DISCORD_TOKEN")
	setString(&config.DiscordChannelID, "POSTLINE_DISCORD_CHANNEL_ID")

	if v, ok := os.LookupEnv("POSTLINE_RETRY_MAX_RETRIES"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.RetryMaxRetries = n
		}
	}
	if v, ok := os.LookupEnv("POSTLINE_DEDUP_NEAR_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.DedupNearThreshold = f
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
