package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateConfig checks if the global configuration has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateSweeperConfig(&cfg.Sweeper); err != nil {
		return fmt.Errorf("YAML global config: sweeper directive is invalid: %w", err)
	}
	if err := validateSchedulerConfig(&cfg.Scheduler); err != nil {
		return fmt.Errorf("YAML global config: scheduler directive is invalid: %w", err)
	}
	if err := validateTelegramConfig(&cfg.Telegram); err != nil {
		return fmt.Errorf("YAML global config: telegram directive is invalid: %w", err)
	}
	if err := validateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

func validateSweeperConfig(cfg *Sweeper) error {
	if cfg == nil {
		return fmt.Errorf("sweeper configuration is nil")
	}
	if cfg.TargetsFile == "" {
		return fmt.Errorf("targets_file must be set")
	}
	if cfg.TokensFile == "" {
		return fmt.Errorf("tokens_file must be set")
	}
	if cfg.CompletedFile == "" {
		return fmt.Errorf("completed_file must be set")
	}
	if cfg.ResultsFolder == "" || cfg.VerifiedFolder == "" {
		return fmt.Errorf("results_folder and verified_folder must be set")
	}
	if cfg.MaxRetriesPerTarget < 0 {
		return fmt.Errorf("max_retries_per_target cannot be negative: %d", cfg.MaxRetriesPerTarget)
	}

	seconds := map[string]int{
		"token_cooldown": cfg.TokenCooldown,
		"retry_delay":    cfg.RetryDelay,
		"target_pause":   cfg.TargetPause,
	}
	for name, value := range seconds {
		if err := validateSeconds(value, name, 24*time.Hour); err != nil {
			return err
		}
	}
	return nil
}

func validateSchedulerConfig(cfg *Scheduler) error {
	if cfg == nil {
		return fmt.Errorf("scheduler configuration is nil")
	}
	if err := validateSeconds(cfg.RunDuration, "run_duration", 7*24*time.Hour); err != nil {
		return err
	}
	if err := validateSeconds(cfg.BreakDuration, "break_duration", 7*24*time.Hour); err != nil {
		return err
	}
	return nil
}

// validateTelegramConfig requires a chat id whenever a bot token is set.
// An entirely empty telegram section disables notifications.
func validateTelegramConfig(cfg *Telegram) error {
	if cfg == nil {
		return fmt.Errorf("telegram configuration is nil")
	}
	if cfg.BotToken != "" && cfg.ChatID == "" {
		return fmt.Errorf("chat_id must be set when bot_token is set")
	}
	if cfg.APIURL != "" {
		if _, err := url.Parse(cfg.APIURL); err != nil {
			return fmt.Errorf("invalid api_url: %w", err)
		}
	}
	return nil
}

func validateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	seconds := map[string]int{
		"retry_max_wait_time": httpConfig.RetryMaxWaitTime,
		"retry_wait_time":     httpConfig.RetryWaitTime,
		"timeout":             httpConfig.Timeout,
	}
	for name, value := range seconds {
		if err := validateSeconds(value, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}
	return nil
}

// validateSeconds checks that a seconds value is non-negative and within max.
func validateSeconds(value int, name string, max time.Duration) error {
	if value < 0 {
		return fmt.Errorf("invalid duration for %q: %d cannot be negative", name, value)
	}
	if time.Duration(value)*time.Second > max {
		return fmt.Errorf("%q duration is too long: %ds exceeds maximum of %v", name, value, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if !strings.Contains(proxy.Host, "://") {
		proxy.Host = "http://" + proxy.Host
	}
	proxy.Host = strings.TrimRight(proxy.Host, "/")
	if _, err := url.Parse(proxy.Host); err != nil {
		return fmt.Errorf("invalid proxy host URL: %w", err)
	}

	if proxy.Port < 1 || proxy.Port > 65535 {
		return fmt.Errorf("proxy port must be between 1 and 65535, got %d", proxy.Port)
	}
	return nil
}
