package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Title    string         `toml:"title"`
	Accounts AccountsConfig `toml:"accounts"`
	SignIn   SignInConfig   `toml:"signin"`
	Retry    RetryConfig    `toml:"retry"`
	Cloud    CloudConfig    `toml:"cloud"`
	Notify   NotifyConfig   `toml:"notify"`
}

// AccountsConfig holds the paired credential list and the per-batch family ids.
type AccountsConfig struct {
	List      []string `toml:"list"`
	FamilyIDs []string `toml:"family_ids"`
}

// SignInConfig controls sign-in concurrency.
type SignInConfig struct {
	PrivateThreads   int  `toml:"private_threads"`
	FamilyThreads    int  `toml:"family_threads"`
	PrivateOnlyFirst bool `toml:"private_only_first"`
}

// RetryConfig contains the three independent retry policies.
type RetryConfig struct {
	Login RetryPolicyConfig `toml:"login"`
	Task  RetryPolicyConfig `toml:"task"`
	Push  RetryPolicyConfig `toml:"push"`
}

// RetryPolicyConfig is a total attempt count and a fixed delay between attempts.
type RetryPolicyConfig struct {
	Attempts int `toml:"attempts"`
	DelayMS  int `toml:"delay_ms"`
}

// Delay returns the configured delay as a [time.Duration].
func (r RetryPolicyConfig) Delay() time.Duration {
	return time.Duration(r.DelayMS) * time.Millisecond
}

// CloudConfig contains the remote account service endpoints.
type CloudConfig struct {
	WebURL    string  `toml:"web_url"`
	AuthURL   string  `toml:"auth_url"`
	APIURL    string  `toml:"api_url"`
	RateLimit float64 `toml:"rate_limit"`
	TimeoutMS int     `toml:"timeout_ms"`
}

// Timeout returns the HTTP client timeout for cloud requests.
func (c CloudConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// NotifyConfig contains notification channel credentials.
type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
	WxPusher WxPusherConfig `toml:"wxpusher"`
}

// TelegramConfig contains Telegram bot credentials.
type TelegramConfig struct {
	BotToken  string `toml:"bot_token"`
	ChatID    string `toml:"chat_id"`
	Endpoint  string `toml:"endpoint"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// Enabled reports whether both bot token and chat id are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Timeout returns the per-request timeout for Telegram calls.
func (t TelegramConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMS) * time.Millisecond
}

// WxPusherConfig contains WxPusher credentials.
type WxPusherConfig struct {
	AppToken  string `toml:"app_token"`
	UID       string `toml:"uid"`
	Endpoint  string `toml:"endpoint"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// Enabled reports whether both app token and uid are set.
func (w WxPusherConfig) Enabled() bool {
	return w.AppToken != "" && w.UID != ""
}

// Timeout returns the per-request timeout for WxPusher calls.
func (w WxPusherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values the batch runner depends on.
func (c *Config) Validate() error {
	if c.SignIn.PrivateThreads < 1 {
		return fmt.Errorf("%w: signin.private_threads must be >= 1", ErrInvalidConfig)
	}
	if c.SignIn.FamilyThreads < 1 {
		return fmt.Errorf("%w: signin.family_threads must be >= 1", ErrInvalidConfig)
	}
	for name, p := range map[string]RetryPolicyConfig{
		"login": c.Retry.Login, "task": c.Retry.Task, "push": c.Retry.Push,
	} {
		if p.Attempts < 1 {
			return fmt.Errorf("%w: retry.%s.attempts must be >= 1", ErrInvalidConfig, name)
		}
		if p.DelayMS < 0 {
			return fmt.Errorf("%w: retry.%s.delay_ms must be >= 0", ErrInvalidConfig, name)
		}
	}
	return nil
}
