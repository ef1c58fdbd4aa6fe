package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenPort     = "8080"
	defaultSiteName       = "ebin.tld"
	defaultSecretKey      = "changeme"
	defaultLanguage       = "en-us"
	defaultTimeZone       = "UTC"
	defaultDBEngine       = EnginePostgres
	defaultDBHost         = "/var/run/postgresql"
	defaultDBName         = "postgres"
	defaultNNTPHost       = "127.0.0.1"
	defaultNNTPPort       = 1129
	defaultConvertPath    = "/usr/bin/convert"
	defaultFFmpegPath     = "/usr/bin/ffmpeg"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Supported database engines.
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"
)

const redactedPlaceholder = "********"

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults.
// The resolved value is immutable for the lifetime of the process.
type Config struct {
	Site     Site     `yaml:"site"`
	HTTP     HTTP     `yaml:"http"`
	Database Database `yaml:"database"`
	NNTP     NNTP     `yaml:"nntp"`
	Assets   Assets   `yaml:"assets"`
	Tools    Tools    `yaml:"tools"`
}

// Site holds identity and safety settings for the frontend.
type Site struct {
	Name         string   `yaml:"name"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	Debug        bool     `yaml:"debug"`
	SecretKey    string   `yaml:"secret_key"`
	Language     string   `yaml:"language"`
	TimeZone     string   `yaml:"time_zone"`
}

// HTTP holds listener and server tuning settings.
type HTTP struct {
	Listen               string        `yaml:"listen"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimitRPS         float64       `yaml:"-"`
	RateLimitBurst       int           `yaml:"-"`
}

type rateLimitDump struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// MarshalYAML renders durations in their string form and the rate limit as
// its own section, so dumped configuration files load back through the same
// parser without losing settings.
func (h HTTP) MarshalYAML() (interface{}, error) {
	return struct {
		Listen               string        `yaml:"listen"`
		ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
		ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
		WriteTimeout         string        `yaml:"write_timeout"`
		IdleTimeout          string        `yaml:"idle_timeout"`
		EnableRequestLogging bool          `yaml:"enable_request_logging"`
		RateLimit            rateLimitDump `yaml:"rate_limit"`
	}{
		Listen:               h.Listen,
		ShutdownGracePeriod:  h.ShutdownGracePeriod.String(),
		ReadHeaderTimeout:    h.ReadHeaderTimeout.String(),
		WriteTimeout:         h.WriteTimeout.String(),
		IdleTimeout:          h.IdleTimeout.String(),
		EnableRequestLogging: h.EnableRequestLogging,
		RateLimit: rateLimitDump{
			RPS:   h.RateLimitRPS,
			Burst: h.RateLimitBurst,
		},
	}, nil
}

// Database describes the connection to the article database.
type Database struct {
	Engine   string `yaml:"engine"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// NNTP describes the backing news server endpoint and optional login.
type NNTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Addr returns the server endpoint in host:port form.
func (n NNTP) Addr() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// HasAuth reports whether login credentials are configured.
func (n NNTP) HasAuth() bool {
	return n.User != "" && n.Password != ""
}

// Assets holds the filesystem roots and URL prefixes for served files.
type Assets struct {
	Root           string `yaml:"root"`
	StaticRoot     string `yaml:"static_root"`
	StaticURL      string `yaml:"static_url"`
	MediaRoot      string `yaml:"media_root"`
	MediaURL       string `yaml:"media_url"`
	CaptchaFontDir string `yaml:"captcha_font_dir"`
}

// Tools holds paths to the external binaries used for thumbnailing.
type Tools struct {
	ConvertPath string `yaml:"convert_path"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile string
	Listen     *string
	NNTPAddr   *string
	DBEngine   *string
	DBName     *string
	SiteName   *string
	Debug      *bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	applyEnvConfig(&cfg)

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if cfg.Assets.CaptchaFontDir == "" {
		cfg.Assets.CaptchaFontDir = filepath.Join(cfg.Assets.Root, "fonts")
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values. Debug defaults to on;
// validation tightens the requirements once it is switched off.
func defaultConfig() Config {
	return Config{
		Site: Site{
			Name:      defaultSiteName,
			Debug:     true,
			SecretKey: defaultSecretKey,
			Language:  defaultLanguage,
			TimeZone:  defaultTimeZone,
		},
		HTTP: HTTP{
			Listen:               defaultListenPort,
			ShutdownGracePeriod:  10 * time.Second,
			ReadHeaderTimeout:    5 * time.Second,
			WriteTimeout:         15 * time.Second,
			IdleTimeout:          60 * time.Second,
			EnableRequestLogging: true,
			RateLimitRPS:         defaultRateLimitRPS,
			RateLimitBurst:       defaultRateLimitBurst,
		},
		Database: Database{
			Engine: defaultDBEngine,
			Host:   defaultDBHost,
			Name:   defaultDBName,
		},
		NNTP: NNTP{
			Host: defaultNNTPHost,
			Port: defaultNNTPPort,
		},
		Assets: Assets{
			Root:       "assets",
			StaticRoot: "static",
			StaticURL:  "/static/",
			MediaRoot:  "media",
			MediaURL:   "/media/",
		},
		Tools: Tools{
			ConvertPath: defaultConvertPath,
			FFmpegPath:  defaultFFmpegPath,
		},
	}
}

// Redacted returns a copy with secrets masked, safe for logging and dumping.
func (c Config) Redacted() Config {
	out := c
	out.Site.AllowedHosts = append([]string(nil), c.Site.AllowedHosts...)
	if out.Site.SecretKey != "" {
		out.Site.SecretKey = redactedPlaceholder
	}
	if out.Database.Password != "" {
		out.Database.Password = redactedPlaceholder
	}
	if out.NNTP.Password != "" {
		out.NNTP.Password = redactedPlaceholder
	}
	return out
}

// DumpYAML renders the resolved configuration for the show command.
func (c Config) DumpYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if err := validateListen(cfg.HTTP.Listen); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if cfg.NNTP.Host == "" {
		return fmt.Errorf("nntp host cannot be empty")
	}
	if cfg.NNTP.Port < 1 || cfg.NNTP.Port > 65535 {
		return fmt.Errorf("nntp port must be in 1..65535, got %d", cfg.NNTP.Port)
	}
	switch cfg.Database.Engine {
	case EnginePostgres:
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
	case EngineSQLite:
		if cfg.Database.Name == "" {
			return fmt.Errorf("sqlite3 engine requires a database file name")
		}
	default:
		return fmt.Errorf("unsupported database engine %q", cfg.Database.Engine)
	}
	if cfg.Database.Port < 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database port must be in 0..65535, got %d", cfg.Database.Port)
	}
	if cfg.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must be >= 0")
	}
	if cfg.HTTP.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit burst must be >= 0")
	}
	if !cfg.Site.Debug {
		if cfg.Site.SecretKey == "" || cfg.Site.SecretKey == defaultSecretKey {
			return fmt.Errorf("secret key must be set to a non-default value when debug is off")
		}
		if len(cfg.Site.AllowedHosts) == 0 {
			return fmt.Errorf("allowed hosts cannot be empty when debug is off")
		}
	}
	return nil
}

// validateListen accepts a bare port or a host:port listen address.
func validateListen(listen string) error {
	port := listen
	if strings.Contains(listen, ":") {
		var err error
		if _, port, err = net.SplitHostPort(listen); err != nil {
			return fmt.Errorf("invalid listen address %q", listen)
		}
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// parseHostPort splits a host:port override, allowing IPv6 literals.
func parseHostPort(raw string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(raw))
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q", raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}

// parseHostList parses a comma-separated allowed-hosts list.
func parseHostList(raw string) []string {
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hosts = append(hosts, part)
	}
	return hosts
}
