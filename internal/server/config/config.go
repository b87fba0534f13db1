// Package config handles configuration for the server component,
// including defaults, .env and environment variables, JSON overlay, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the postline server.
//
// Fields:
//   - Addr: bind address for the HTTP API.
//   - DatabaseDSN: storage DSN; postgres:// URL, SQLite file path, or "memory".
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - OrgID: the org this instance serves; every API token is checked against it.
//   - AccessTokenValidityDuration: API token lifetime.
//   - DedupWindow / DedupNearThreshold: duplicate-guard candidate window and
//     token-overlap ratio above which a near match is reported.
//   - RetryMaxRetries / RetryBaseDelay / RetryJitter: publish retry policy.
//   - SchedulerInterval: how often due scheduled posts are picked up; 0 disables.
//   - EnhancerEndpoint: optional media-enhancement service; empty disables.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint: object storage.
//   - DiscordToken / DiscordChannelID: optional pipeline notifications; empty disables.
type Config struct {
	Addr                        string
	DatabaseDSN                 string
	SecretKey                   string
	OrgID                       string
	AccessTokenValidityDuration time.Duration
	DedupWindow                 time.Duration
	DedupNearThreshold          float64
	RetryMaxRetries             uint64
	RetryBaseDelay              time.Duration
	RetryJitter                 time.Duration
	SchedulerInterval           time.Duration
	EnhancerEndpoint            string
	S3AccessKey                 string
	S3SecretKey                 string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	DiscordToken                string
	DiscordChannelID            string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = "memory"
	c.SecretKey = "secretKey"
	c.OrgID = "default"
	c.AccessTokenValidityDuration = 12 * time.Hour
	c.DedupWindow = 30 * 24 * time.Hour
	c.DedupNearThreshold = 0.85
	c.RetryMaxRetries = 3
	c.RetryBaseDelay = 500 * time.Millisecond
	c.RetryJitter = 250 * time.Millisecond
	c.SchedulerInterval = time.Minute
	c.S3Bucket = "postline"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
