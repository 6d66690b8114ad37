package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "PBN_CONFIG"
	databaseDriverEnv = "PBN_DATABASE_DRIVER"
	databaseDSNEnv    = "PBN_DATABASE_DSN"
	httpAddrEnv       = "PBN_HTTP_ADDR"
	logLevelEnv       = "PBN_LOG_LEVEL"
	secretKeyEnv      = "PBN_SECRET_KEY"
	maxAttemptsEnv    = "PBN_PUBLISH_MAX_ATTEMPTS"
	telegramTokenEnv  = "PBN_TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "PBN_TELEGRAM_CHAT_ID"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database" toml:"database"`
	HTTP          HTTPConfig         `yaml:"http" toml:"http"`
	Logging       LoggingConfig      `yaml:"logging" toml:"logging"`
	Security      SecurityConfig     `yaml:"security" toml:"security"`
	Publish       PublishConfig      `yaml:"publish" toml:"publish"`
	WordPress     WordPressConfig    `yaml:"wordpress" toml:"wordpress"`
	Spinner       SpinnerConfig      `yaml:"spinner" toml:"spinner"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications"`
}

// DatabaseConfig selects the SQL driver and its DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// HTTPConfig configures the dashboard API listener.
type HTTPConfig struct {
	Addr           string `yaml:"addr" toml:"addr"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes" toml:"maxUploadBytes"`
}

// LoggingConfig picks slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// SecurityConfig holds the credential sealing key and session lifetime.
type SecurityConfig struct {
	SecretKey  string   `yaml:"secretKey" toml:"secretKey"`
	SessionTTL Duration `yaml:"sessionTtl" toml:"sessionTtl"`
}

// PublishConfig bounds publish retries.
type PublishConfig struct {
	MaxAttempts int      `yaml:"maxAttempts" toml:"maxAttempts"`
	StaleAfter  Duration `yaml:"staleAfter" toml:"staleAfter"`
}

// WordPressConfig tunes the outbound REST client.
type WordPressConfig struct {
	Timeout   Duration `yaml:"timeout" toml:"timeout"`
	UserAgent string   `yaml:"userAgent" toml:"userAgent"`
}

// SpinnerConfig optionally replaces the built-in thesaurus.
type SpinnerConfig struct {
	ThesaurusPath string `yaml:"thesaurusPath" toml:"thesaurusPath"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" toml:"botToken"`
	ChatID   string `yaml:"chatId" toml:"chatId"`
}

// Duration decodes "90s"-style strings from YAML and TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads the file named by PBN_CONFIG (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFrom is Load with an explicit file; unlike Load it fails on a bad file.
func LoadFrom(path string) (Config, error) {
	if path == "" {
		return Load(), nil
	}
	fileCfg, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := mergeConfig(defaultConfig(), fileCfg)
	cfg.applyEnvOverrides()
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var fileCfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &fileCfg)
	default:
		err = yaml.Unmarshal(raw, &fileCfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate reports settings the application cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if strings.TrimSpace(c.Security.SecretKey) == "" {
		errs = append(errs, fmt.Errorf("security.secretKey is required (or set %s)", secretKeyEnv))
	}
	if c.Publish.MaxAttempts < 0 {
		errs = append(errs, errors.New("publish.maxAttempts must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(secretKeyEnv); v != "" {
		c.Security.SecretKey = v
	}

	if v := os.Getenv(maxAttemptsEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Publish.MaxAttempts = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", maxAttemptsEnv, v, err)
		}
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.MaxUploadBytes > 0 {
		base.HTTP.MaxUploadBytes = override.HTTP.MaxUploadBytes
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Security.SecretKey != "" {
		base.Security.SecretKey = override.Security.SecretKey
	}
	if override.Security.SessionTTL.Duration > 0 {
		base.Security.SessionTTL = override.Security.SessionTTL
	}

	if override.Publish.MaxAttempts != 0 {
		base.Publish.MaxAttempts = override.Publish.MaxAttempts
	}
	if override.Publish.StaleAfter.Duration > 0 {
		base.Publish.StaleAfter = override.Publish.StaleAfter
	}

	if override.WordPress.Timeout.Duration > 0 {
		base.WordPress.Timeout = override.WordPress.Timeout
	}
	if override.WordPress.UserAgent != "" {
		base.WordPress.UserAgent = override.WordPress.UserAgent
	}

	if override.Spinner.ThesaurusPath != "" {
		base.Spinner.ThesaurusPath = override.Spinner.ThesaurusPath
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "data/pbn.db"},
		HTTP:     HTTPConfig{Addr: ":3000", MaxUploadBytes: 20 << 20},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Security: SecurityConfig{SessionTTL: Duration{30 * 24 * time.Hour}},
		Publish: PublishConfig{
			MaxAttempts: 5,
			StaleAfter:  Duration{10 * time.Minute},
		},
		WordPress: WordPressConfig{
			Timeout:   Duration{30 * time.Second},
			UserAgent: "PBNPublisher/1.0",
		},
	}
}
