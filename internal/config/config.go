package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jonny/lockwatch/internal/domain/model"
)

// Environment variables that override the config file when set.
const (
	EnvAPIKey            = "SESAME_API_KEY"
	EnvDeviceIDs         = "SESAME_DEVICE_IDS"
	EnvDeviceNames       = "SESAME_DEVICE_NAMES"
	EnvDiscordWebhookURL = "SESAME_DISCORD_WEBHOOK_URL"
	EnvDiscordPublicKey  = "SESAME_DISCORD_PUBLIC_KEY"
	EnvSlackWebhookURL   = "SESAME_SLACK_WEBHOOK_URL"
	EnvSlackSigning      = "SESAME_SLACK_SIGNING_SECRET"
	EnvSlackAppToken     = "SESAME_SLACK_APP_TOKEN"
	EnvSlackBotToken     = "SESAME_SLACK_BOT_TOKEN"
)

const (
	PlatformDiscord = "discord"
	PlatformSlack   = "slack"
	PlatformLog     = "log"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sesame  SesameConfig  `yaml:"sesame"`
	Notify  NotifyConfig  `yaml:"notify"`
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port            int             `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout" validate:"gte=0"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" validate:"gte=0"`
}

type SesameConfig struct {
	BaseURL string `yaml:"baseURL" validate:"omitempty,url"`
	APIKey  string `yaml:"apiKey"`
	// DeviceIDs and DeviceNames are comma-separated and index-aligned.
	DeviceIDs       string        `yaml:"deviceIDs"`
	DeviceNames     string        `yaml:"deviceNames"`
	Timeout         time.Duration `yaml:"timeout" validate:"gte=0"`
	CommandTimeout  time.Duration `yaml:"commandTimeout" validate:"gte=0"`
	RequestInterval time.Duration `yaml:"requestInterval" validate:"gte=0"`
	HistoryNote     string        `yaml:"historyNote"`
}

type NotifyConfig struct {
	Platform string        `yaml:"platform" validate:"oneof=discord slack log"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhookURL" validate:"omitempty,url"`
	Username   string `yaml:"username"`
	// PublicKey is the application's hex-encoded Ed25519 key used to verify
	// interaction requests. Verification is skipped when empty.
	PublicKey string `yaml:"publicKey" validate:"omitempty,hexadecimal,len=64"`
}

type SlackConfig struct {
	WebhookURL    string `yaml:"webhookURL" validate:"omitempty,url"`
	SigningSecret string `yaml:"signingSecret"`
	// AppToken enables Socket Mode for interactions alongside the HTTP
	// endpoint. It needs a bot token as well.
	AppToken string `yaml:"appToken" validate:"omitempty,startswith=xapp-"`
	BotToken string `yaml:"botToken" validate:"required_with=AppToken,omitempty,startswith=xoxb-"`
}

type WatchConfig struct {
	Interval time.Duration `yaml:"interval" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Load builds a Config from defaults, an optional YAML file and the
// SESAME_* environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := decodeYAML([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return cfg, nil
}

// decodeYAML overlays data onto cfg. An empty document leaves cfg as is; any
// other root than a mapping is rejected.
func decodeYAML(data []byte, cfg *Config) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	if root.Kind == 0 {
		return nil
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return errors.New("config file must be a YAML mapping")
	}
	if err := doc.Decode(cfg); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		},
		Sesame: SesameConfig{
			BaseURL:         "https://app.candyhouse.co/api/sesame2",
			Timeout:         10 * time.Second,
			CommandTimeout:  2500 * time.Millisecond,
			RequestInterval: 500 * time.Millisecond,
			HistoryNote:     "Locked by lockwatch",
		},
		Notify: NotifyConfig{
			Platform: PlatformDiscord,
			Timeout:  10 * time.Second,
		},
		Discord: DiscordConfig{
			Username: "lockwatch",
		},
		Watch: WatchConfig{
			Interval: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv returns the defaults overlaid with the SESAME_* environment
// variables, without reading a file or validating. It is used to reach a
// webhook when Load fails.
func FromEnv() *Config {
	cfg := DefaultConfig()
	applyEnv(cfg, os.LookupEnv)
	return cfg
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		key string
		dst *string
	}{
		{EnvAPIKey, &cfg.Sesame.APIKey},
		{EnvDeviceIDs, &cfg.Sesame.DeviceIDs},
		{EnvDeviceNames, &cfg.Sesame.DeviceNames},
		{EnvDiscordWebhookURL, &cfg.Discord.WebhookURL},
		{EnvDiscordPublicKey, &cfg.Discord.PublicKey},
		{EnvSlackWebhookURL, &cfg.Slack.WebhookURL},
		{EnvSlackSigning, &cfg.Slack.SigningSecret},
		{EnvSlackAppToken, &cfg.Slack.AppToken},
		{EnvSlackBotToken, &cfg.Slack.BotToken},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok {
			*o.dst = v
		}
	}
}

// Devices returns the configured devices with their display names.
func (c *Config) Devices() []model.DeviceDescriptor {
	return model.NewDeviceDescriptors(
		model.SplitList(c.Sesame.DeviceIDs),
		model.SplitList(c.Sesame.DeviceNames),
	)
}

// WebhookURL returns the outgoing webhook for the selected platform.
func (c *Config) WebhookURL() string {
	switch c.Notify.Platform {
	case PlatformDiscord:
		return c.Discord.WebhookURL
	case PlatformSlack:
		return c.Slack.WebhookURL
	default:
		return ""
	}
}
