package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Config is the root configuration for marketbot.
type Config struct {
	General       GeneralConfig       `json:"general"`
	Marketplace   MarketplaceConfig   `json:"marketplace"`
	AutoResponse  AutoResponseConfig  `json:"autoResponse"`
	AutoDelivery  AutoDeliveryConfig  `json:"autoDelivery"`
	AutoRestore   AutoRestoreConfig   `json:"autoRestore"`
	Raise         RaiseConfig         `json:"raise"`
	Notifications NotificationsConfig `json:"notifications"`
	Telegram      TelegramConfig      `json:"telegram"`
	Discord       DiscordConfig       `json:"discord"`
	Slack         SlackConfig         `json:"slack"`
	Inventory     InventoryConfig     `json:"inventory"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile,omitempty"`
}

// MarketplaceConfig holds the session credentials and request policy for the
// marketplace account. The session key is the long-lived auth cookie taken
// from a logged-in browser session.
type MarketplaceConfig struct {
	BaseURL         string `json:"baseUrl"`
	SessionKey      string `json:"sessionKey"`
	SessionID       string `json:"sessionId,omitempty"`
	CSRFToken       string `json:"csrfToken,omitempty"`
	UserAgent       string `json:"userAgent,omitempty"`
	RequestTimeoutS int    `json:"requestTimeoutSeconds"`
	PollIntervalS   int    `json:"pollIntervalSeconds"`
}

type AutoResponseConfig struct {
	Enabled  bool                     `json:"enabled"`
	Commands map[string]CommandConfig `json:"commands,omitempty"`
}

// CommandConfig is one scripted reply. Notify routes an extra notification
// when the command fires; NotifyText overrides the default notification body.
type CommandConfig struct {
	Response   string `json:"response"`
	Notify     bool   `json:"notify,omitempty"`
	NotifyText string `json:"notifyText,omitempty"`
}

type AutoDeliveryConfig struct {
	Enabled   bool   `json:"enabled"`
	RulesPath string `json:"rulesPath"`
}

type AutoRestoreConfig struct {
	Enabled bool        `json:"enabled"`
	Lots    []LotConfig `json:"lots,omitempty"`
}

// LotConfig identifies one listing the restore sweep keeps active.
type LotConfig struct {
	ID     int64 `json:"id"`
	GameID int64 `json:"gameId"`
}

type RaiseConfig struct {
	Enabled    bool             `json:"enabled"`
	Categories []CategoryConfig `json:"categories,omitempty"`
	// Exclude lists category ids never submitted in a raise modal.
	Exclude FlexStringList `json:"exclude,omitempty"`
}

type CategoryConfig struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"` // "lot" | "currency"
}

// NotificationsConfig gates the notification handlers. Enabled is the master
// switch; the per-category flags gate individual handlers.
type NotificationsConfig struct {
	Enabled  bool `json:"enabled"`
	NewOrder bool `json:"newOrder"`
	Delivery bool `json:"delivery"`
	Raise    bool `json:"raise"`
	Command  bool `json:"command"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

type DiscordConfig struct {
	Enabled   bool   `json:"enabled"`
	Token     string `json:"token"`
	ChannelID string `json:"channelId"`
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"botToken"`
	Channel  string `json:"channel"`
}

type InventoryConfig struct {
	DBPath string `json:"dbPath"`
}

// FlexStringList is a []string that can unmarshal from JSON arrays containing
// both strings and numbers (e.g. ["123", 456] both become "123", "456").
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			result = append(result, strconv.FormatInt(int64(n), 10))
			continue
		}
		result = append(result, string(item))
	}
	*f = result
	return nil
}

// DefaultConfigDir returns the default config directory (~/.marketbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".marketbot"
	}
	return filepath.Join(home, ".marketbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.AutoDelivery.RulesPath = ExpandPath(cfg.AutoDelivery.RulesPath)
	cfg.Inventory.DBPath = ExpandPath(cfg.Inventory.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Marketplace.BaseURL == "" {
		errs = append(errs, "marketplace.baseUrl is required")
	}
	if cfg.Marketplace.RequestTimeoutS < 1 {
		errs = append(errs, "marketplace.requestTimeoutSeconds must be >= 1")
	}
	if cfg.Marketplace.PollIntervalS < 1 {
		errs = append(errs, "marketplace.pollIntervalSeconds must be >= 1")
	}

	if cfg.AutoDelivery.Enabled && cfg.AutoDelivery.RulesPath == "" {
		errs = append(errs, "autoDelivery.rulesPath is required when autoDelivery is enabled")
	}

	if cfg.Raise.Enabled && len(cfg.Raise.Categories) == 0 {
		errs = append(errs, "raise.categories must not be empty when raise is enabled")
	}
	for i, cat := range cfg.Raise.Categories {
		switch cat.Type {
		case "", "lot", "currency":
		default:
			errs = append(errs, fmt.Sprintf("raise.categories[%d].type must be \"lot\" or \"currency\"", i))
		}
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.Token == "" {
			errs = append(errs, "telegram.token is required when telegram is enabled")
		}
		if cfg.Telegram.ChatID == 0 {
			errs = append(errs, "telegram.chatId is required when telegram is enabled")
		}
	}
	if cfg.Discord.Enabled && (cfg.Discord.Token == "" || cfg.Discord.ChannelID == "") {
		errs = append(errs, "discord.token and discord.channelId are required when discord is enabled")
	}
	if cfg.Slack.Enabled && (cfg.Slack.BotToken == "" || cfg.Slack.Channel == "") {
		errs = append(errs, "slack.botToken and slack.channel are required when slack is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
