package config

type Config struct {
	Logger     Logger     `yaml:"logger"`
	Sweeper    Sweeper    `yaml:"sweeper"`
	Engine     Engine     `yaml:"engine"`
	Scheduler  Scheduler  `yaml:"scheduler"`
	Telegram   Telegram   `yaml:"telegram"`
	HTTPClient HTTPClient `yaml:"http_client"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// Sweeper holds the settings for the scan orchestration loop.
// Duration-like values are plain seconds in YAML.
type Sweeper struct {
	TargetsFile         string `yaml:"targets_file"`
	TokensFile          string `yaml:"tokens_file"`
	ResultsFolder       string `yaml:"results_folder"`
	VerifiedFolder      string `yaml:"verified_folder"`
	CompletedFile       string `yaml:"completed_file"`
	MaxRetriesPerTarget int    `yaml:"max_retries_per_target"`
	TokenCooldown       int    `yaml:"token_cooldown"`
	RetryDelay          int    `yaml:"retry_delay"`
	TargetPause         int    `yaml:"target_pause"`
}

// Engine describes how the external secret-detection binary is invoked.
type Engine struct {
	Binary    string   `yaml:"binary"`
	Timeout   int      `yaml:"timeout"`
	ExtraArgs []string `yaml:"extra_args"`
}

type Scheduler struct {
	RunDuration   int `yaml:"run_duration"`
	BreakDuration int `yaml:"break_duration"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	// APIURL overrides the Telegram API base URL, mainly for tests.
	APIURL string `yaml:"api_url"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    int             `yaml:"retry_wait_time"`
	RetryMaxWaitTime int             `yaml:"retry_max_wait_time"`
	Timeout          int             `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}
