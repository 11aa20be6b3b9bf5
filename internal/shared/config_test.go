package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Title != "Cloud189 sign-in" {
			t.Errorf("expected default title, got %s", config.Title)
		}
		if config.Retry.Login.Attempts != 5 || config.Retry.Login.DelayMS != 10000 {
			t.Errorf("unexpected login policy %+v", config.Retry.Login)
		}
		if config.Retry.Task.Attempts != 5 || config.Retry.Task.DelayMS != 10000 {
			t.Errorf("unexpected task policy %+v", config.Retry.Task)
		}
		if config.Retry.Push.Attempts != 3 || config.Retry.Push.DelayMS != 1000 {
			t.Errorf("unexpected push policy %+v", config.Retry.Push)
		}
		if config.Notify.Telegram.TimeoutMS != 5000 {
			t.Errorf("expected telegram timeout 5000, got %d", config.Notify.Telegram.TimeoutMS)
		}
		if config.Notify.WxPusher.TimeoutMS != 15000 {
			t.Errorf("expected wxpusher timeout 15000, got %d", config.Notify.WxPusher.TimeoutMS)
		}
		if config.Notify.Telegram.Enabled() || config.Notify.WxPusher.Enabled() {
			t.Error("channels should be disabled by default")
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Cloud.WebURL != DefaultConfig().Cloud.WebURL {
			t.Errorf("created config web url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `title = "nightly"

[accounts]
list = ["13800000000", "secret", "13900000000", "secret2"]
family_ids = ["fam-1"]

[signin]
private_threads = 3
family_threads = 4
private_only_first = true

[notify.telegram]
bot_token = "123:abc"
chat_id = "42"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Title != "nightly" {
			t.Errorf("expected title nightly, got %s", config.Title)
		}
		if len(config.Accounts.List) != 4 {
			t.Errorf("expected 4 list entries, got %d", len(config.Accounts.List))
		}
		if config.SignIn.PrivateThreads != 3 || config.SignIn.FamilyThreads != 4 || !config.SignIn.PrivateOnlyFirst {
			t.Errorf("unexpected signin config %+v", config.SignIn)
		}
		if !config.Notify.Telegram.Enabled() {
			t.Error("telegram should be enabled")
		}
		if config.Retry.Login.Attempts != 5 {
			t.Errorf("missing keys should keep defaults, got login attempts %d", config.Retry.Login.Attempts)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "zero private threads", mutate: func(c *Config) { c.SignIn.PrivateThreads = 0 }},
			{name: "zero family threads", mutate: func(c *Config) { c.SignIn.FamilyThreads = 0 }},
			{name: "zero push attempts", mutate: func(c *Config) { c.Retry.Push.Attempts = 0 }},
			{name: "negative login delay", mutate: func(c *Config) { c.Retry.Login.DelayMS = -1 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}

func TestApplyEnv(t *testing.T) {
	lookupFrom := func(env map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}
	}

	t.Run("overrides config values", func(t *testing.T) {
		config := DefaultConfig()
		err := ApplyEnv(config, lookupFrom(map[string]string{
			EnvAccounts:         "u1 p1\nu2 p2",
			EnvFamilyIDs:        "f1\nf2",
			EnvPrivateThreads:   "2",
			EnvFamilyThreads:    "5",
			EnvPrivateOnlyFirst: "true",
			EnvTelegramToken:    "tok",
			EnvTelegramChatID:   "99",
			EnvWxPusherToken:    "AT_x",
			EnvWxPusherUID:      "UID_y",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := config.Accounts.List; len(got) != 4 || got[2] != "u2" {
			t.Errorf("unexpected accounts %v", got)
		}
		if got := config.Accounts.FamilyIDs; len(got) != 2 || got[1] != "f2" {
			t.Errorf("unexpected family ids %v", got)
		}
		if config.SignIn.PrivateThreads != 2 || config.SignIn.FamilyThreads != 5 || !config.SignIn.PrivateOnlyFirst {
			t.Errorf("unexpected signin config %+v", config.SignIn)
		}
		if !config.Notify.Telegram.Enabled() || !config.Notify.WxPusher.Enabled() {
			t.Error("both channels should be enabled")
		}
	})

	t.Run("empty environment keeps config", func(t *testing.T) {
		config := DefaultConfig()
		config.Accounts.List = []string{"a", "b"}
		if err := ApplyEnv(config, lookupFrom(nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(config.Accounts.List) != 2 {
			t.Errorf("expected list to be preserved, got %v", config.Accounts.List)
		}
	})

	t.Run("invalid numbers", func(t *testing.T) {
		for _, key := range []string{EnvPrivateThreads, EnvFamilyThreads, EnvPrivateOnlyFirst} {
			t.Run(key, func(t *testing.T) {
				err := ApplyEnv(DefaultConfig(), lookupFrom(map[string]string{key: "lots"}))
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("CLOUDSIGN_TEST_VAR=hello\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv("CLOUDSIGN_TEST_VAR", "")
		os.Unsetenv("CLOUDSIGN_TEST_VAR")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("CLOUDSIGN_TEST_VAR"); got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})
}
