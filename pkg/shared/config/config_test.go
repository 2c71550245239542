package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Sweeper: Sweeper{
			TargetsFile:    "targets.txt",
			TokensFile:     "tokens.txt",
			ResultsFolder:  "results",
			VerifiedFolder: "verified",
			CompletedFile:  "completed.txt",
		},
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
logger:
  level: debug
sweeper:
  targets_file: targets.txt
  tokens_file: tokens.txt
  results_folder: results
  verified_folder: verified
  completed_file: completed.txt
  token_cooldown: 120
engine:
  binary: /usr/local/bin/trufflehog
  extra_args: ["--only-verified"]
telegram:
  bot_token: bot-token
  chat_id: "42"
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 120, cfg.Sweeper.TokenCooldown)
	assert.Equal(t, "/usr/local/bin/trufflehog", cfg.Engine.Binary)
	assert.Equal(t, []string{"--only-verified"}, cfg.Engine.ExtraArgs)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestDefaultsApplied(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 3, GetMaxRetriesPerTarget(cfg))
	assert.Equal(t, 300*time.Second, GetTokenCooldown(cfg))
	assert.Equal(t, 2*time.Second, GetRetryDelay(cfg))
	assert.Equal(t, 5*time.Second, GetTargetPause(cfg))
	assert.Equal(t, "trufflehog", GetEngineBinary(cfg))
	assert.Equal(t, time.Hour, GetEngineTimeout(cfg))
	assert.Equal(t, 6*time.Hour, GetRunDuration(cfg))
	assert.Equal(t, time.Hour, GetBreakDuration(cfg))
	assert.Equal(t, "https://api.telegram.org", GetTelegramAPIURL(cfg))
}

func TestConfiguredValuesWin(t *testing.T) {
	cfg := validConfig()
	cfg.Sweeper.TokenCooldown = 60
	cfg.Scheduler.RunDuration = 600
	cfg.Telegram.APIURL = "http://localhost:9999"

	assert.Equal(t, time.Minute, GetTokenCooldown(cfg))
	assert.Equal(t, 10*time.Minute, GetRunDuration(cfg))
	assert.Equal(t, "http://localhost:9999", GetTelegramAPIURL(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:   "valid minimal config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing tokens file",
			mutate:  func(cfg *Config) { cfg.Sweeper.TokensFile = "" },
			wantErr: true,
		},
		{
			name:    "missing targets file",
			mutate:  func(cfg *Config) { cfg.Sweeper.TargetsFile = "" },
			wantErr: true,
		},
		{
			name:    "negative retry ceiling",
			mutate:  func(cfg *Config) { cfg.Sweeper.MaxRetriesPerTarget = -1 },
			wantErr: true,
		},
		{
			name:    "negative cooldown",
			mutate:  func(cfg *Config) { cfg.Sweeper.TokenCooldown = -5 },
			wantErr: true,
		},
		{
			name:    "bot token without chat id",
			mutate:  func(cfg *Config) { cfg.Telegram.BotToken = "bot" },
			wantErr: true,
		},
		{
			name:    "excessive http retry count",
			mutate:  func(cfg *Config) { cfg.HTTPClient.RetryCount = 50 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
