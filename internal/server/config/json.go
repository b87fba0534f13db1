package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/postline/postline/internal/flagx"
	"github.com/postline/postline/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr                        string         `json:"addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	OrgID                       string         `json:"org_id"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DedupWindow                 timex.Duration `json:"dedup_window"`
	DedupNearThreshold          float64        `json:"dedup_near_threshold"`
	RetryMaxRetries             uint64         `json:"retry_max_retries"`
	RetryBaseDelay              timex.Duration `json:"retry_base_delay"`
	RetryJitter                 timex.Duration `json:"retry_jitter"`
	SchedulerInterval           timex.Duration `json:"scheduler_interval"`
	EnhancerEndpoint            string         `json:"enhancer_endpoint"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	DiscordToken                string         `json:"discord_token"`
	DiscordChannelID            string         `json:"discord_channel_id"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target
// Config. If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.OrgID = c.OrgID
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.DedupWindow = time.Duration(c.DedupWindow.Duration)
	config.DedupNearThreshold = c.DedupNearThreshold
	config.RetryMaxRetries = c.RetryMaxRetries
	config.RetryBaseDelay = time.Duration(c.RetryBaseDelay.Duration)
	config.RetryJitter = time.Duration(c.RetryJitter.Duration)
	config.SchedulerInterval = time.Duration(c.SchedulerInterval.Duration)
	config.EnhancerEndpoint = c.EnhancerEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.DiscordToken = c.DiscordToken
	config.DiscordChannelID = c.DiscordChannelID
}
