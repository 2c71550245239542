package config

import (
	"crypto/tls"
	"time"
)

// Default values used when the YAML config leaves a setting unset.
const (
	DefaultMaxRetriesPerTarget = 3
	DefaultTokenCooldown       = 300 * time.Second
	DefaultRetryDelay          = 2 * time.Second
	DefaultTargetPause         = 5 * time.Second
	DefaultEngineBinary        = "trufflehog"
	DefaultEngineTimeout       = 3600 * time.Second
	DefaultRunDuration         = 6 * time.Hour
	DefaultBreakDuration       = 1 * time.Hour
	DefaultTelegramAPIURL      = "https://api.telegram.org"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHTTPClientConfig holds additional configuration settings for the resty http client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// DefaultHTTPConfig returns a base configuration for HTTP clients.
// Notification delivery is single-shot, so retries default to zero.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       0,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 2 * time.Second,
		Timeout:          10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12, // Enforce a minimum TLS version
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a specific http config for resty.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// seconds converts a YAML seconds value into a duration, falling back to def
// when the value is unset.
func seconds(value int, def time.Duration) time.Duration {
	if value == 0 {
		return def
	}
	return time.Duration(value) * time.Second
}

// GetMaxRetriesPerTarget returns the rate-limit retry ceiling for one target.
func GetMaxRetriesPerTarget(cfg *Config) int {
	return SetThen(cfg.Sweeper.MaxRetriesPerTarget, DefaultMaxRetriesPerTarget)
}

// GetTokenCooldown returns how long a rate-limited token stays out of rotation.
func GetTokenCooldown(cfg *Config) time.Duration {
	return seconds(cfg.Sweeper.TokenCooldown, DefaultTokenCooldown)
}

// GetRetryDelay returns the pause after a rate-limited scan attempt.
func GetRetryDelay(cfg *Config) time.Duration {
	return seconds(cfg.Sweeper.RetryDelay, DefaultRetryDelay)
}

// GetTargetPause returns the pause between consecutive targets.
func GetTargetPause(cfg *Config) time.Duration {
	return seconds(cfg.Sweeper.TargetPause, DefaultTargetPause)
}

// GetEngineBinary returns the detection-engine executable.
func GetEngineBinary(cfg *Config) string {
	return SetThen(cfg.Engine.Binary, DefaultEngineBinary)
}

// GetEngineTimeout returns the wall-clock budget for one engine invocation.
func GetEngineTimeout(cfg *Config) time.Duration {
	return seconds(cfg.Engine.Timeout, DefaultEngineTimeout)
}

// GetRunDuration returns the length of one scanning window.
func GetRunDuration(cfg *Config) time.Duration {
	return seconds(cfg.Scheduler.RunDuration, DefaultRunDuration)
}

// GetBreakDuration returns the mandatory rest window between cycles.
func GetBreakDuration(cfg *Config) time.Duration {
	return seconds(cfg.Scheduler.BreakDuration, DefaultBreakDuration)
}

// GetTelegramAPIURL returns the Telegram API base URL.
func GetTelegramAPIURL(cfg *Config) string {
	return SetThen(cfg.Telegram.APIURL, DefaultTelegramAPIURL)
}
