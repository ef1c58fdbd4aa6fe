package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig represents the YAML configuration file structure. Durations are
// strings so that "10s" style values parse leniently.
type yamlConfig struct {
	Site struct {
		Name         string   `yaml:"name"`
		AllowedHosts []string `yaml:"allowed_hosts"`
		Debug        *bool    `yaml:"debug"`
		SecretKey    string   `yaml:"secret_key"`
		Language     string   `yaml:"language"`
		TimeZone     string   `yaml:"time_zone"`
	} `yaml:"site"`
	HTTP struct {
		Listen               string        `yaml:"listen"`
		ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
		ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
		WriteTimeout         string        `yaml:"write_timeout"`
		IdleTimeout          string        `yaml:"idle_timeout"`
		EnableRequestLogging *bool         `yaml:"enable_request_logging"`
		RateLimit            yamlRateLimit `yaml:"rate_limit"`
	} `yaml:"http"`
	Database struct {
		Engine   string `yaml:"engine"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`
	NNTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"nntp"`
	Assets struct {
		Root           string `yaml:"root"`
		StaticRoot     string `yaml:"static_root"`
		StaticURL      string `yaml:"static_url"`
		MediaRoot      string `yaml:"media_root"`
		MediaURL       string `yaml:"media_url"`
		CaptchaFontDir string `yaml:"captcha_font_dir"`
	} `yaml:"assets"`
	Tools struct {
		ConvertPath string `yaml:"convert_path"`
		FFmpegPath  string `yaml:"ffmpeg_path"`
	} `yaml:"tools"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Site.Name != "" {
		cfg.Site.Name = yamlCfg.Site.Name
	}
	if len(yamlCfg.Site.AllowedHosts) > 0 {
		cfg.Site.AllowedHosts = yamlCfg.Site.AllowedHosts
	}
	if yamlCfg.Site.Debug != nil {
		cfg.Site.Debug = *yamlCfg.Site.Debug
	}
	if yamlCfg.Site.SecretKey != "" {
		cfg.Site.SecretKey = yamlCfg.Site.SecretKey
	}
	if yamlCfg.Site.Language != "" {
		cfg.Site.Language = yamlCfg.Site.Language
	}
	if yamlCfg.Site.TimeZone != "" {
		cfg.Site.TimeZone = yamlCfg.Site.TimeZone
	}

	if yamlCfg.HTTP.Listen != "" {
		cfg.HTTP.Listen = yamlCfg.HTTP.Listen
	}
	applyDuration(&cfg.HTTP.ShutdownGracePeriod, yamlCfg.HTTP.ShutdownGracePeriod)
	applyDuration(&cfg.HTTP.ReadHeaderTimeout, yamlCfg.HTTP.ReadHeaderTimeout)
	applyDuration(&cfg.HTTP.WriteTimeout, yamlCfg.HTTP.WriteTimeout)
	applyDuration(&cfg.HTTP.IdleTimeout, yamlCfg.HTTP.IdleTimeout)
	if yamlCfg.HTTP.EnableRequestLogging != nil {
		cfg.HTTP.EnableRequestLogging = *yamlCfg.HTTP.EnableRequestLogging
	}
	if yamlCfg.HTTP.RateLimit.RPS != nil && *yamlCfg.HTTP.RateLimit.RPS >= 0 {
		cfg.HTTP.RateLimitRPS = *yamlCfg.HTTP.RateLimit.RPS
	}
	if yamlCfg.HTTP.RateLimit.Burst != nil && *yamlCfg.HTTP.RateLimit.Burst >= 0 {
		cfg.HTTP.RateLimitBurst = *yamlCfg.HTTP.RateLimit.Burst
	}

	if yamlCfg.Database.Engine != "" {
		cfg.Database.Engine = yamlCfg.Database.Engine
	}
	if yamlCfg.Database.Host != "" {
		cfg.Database.Host = yamlCfg.Database.Host
	}
	if yamlCfg.Database.Port > 0 {
		cfg.Database.Port = yamlCfg.Database.Port
	}
	if yamlCfg.Database.Name != "" {
		cfg.Database.Name = yamlCfg.Database.Name
	}
	if yamlCfg.Database.User != "" {
		cfg.Database.User = yamlCfg.Database.User
	}
	if yamlCfg.Database.Password != "" {
		cfg.Database.Password = yamlCfg.Database.Password
	}
	if yamlCfg.Database.SSLMode != "" {
		cfg.Database.SSLMode = yamlCfg.Database.SSLMode
	}

	if yamlCfg.NNTP.Host != "" {
		cfg.NNTP.Host = yamlCfg.NNTP.Host
	}
	if yamlCfg.NNTP.Port > 0 {
		cfg.NNTP.Port = yamlCfg.NNTP.Port
	}
	if yamlCfg.NNTP.User != "" {
		cfg.NNTP.User = yamlCfg.NNTP.User
	}
	if yamlCfg.NNTP.Password != "" {
		cfg.NNTP.Password = yamlCfg.NNTP.Password
	}

	if yamlCfg.Assets.Root != "" {
		cfg.Assets.Root = yamlCfg.Assets.Root
	}
	if yamlCfg.Assets.StaticRoot != "" {
		cfg.Assets.StaticRoot = yamlCfg.Assets.StaticRoot
	}
	if yamlCfg.Assets.StaticURL != "" {
		cfg.Assets.StaticURL = yamlCfg.Assets.StaticURL
	}
	if yamlCfg.Assets.MediaRoot != "" {
		cfg.Assets.MediaRoot = yamlCfg.Assets.MediaRoot
	}
	if yamlCfg.Assets.MediaURL != "" {
		cfg.Assets.MediaURL = yamlCfg.Assets.MediaURL
	}
	if yamlCfg.Assets.CaptchaFontDir != "" {
		cfg.Assets.CaptchaFontDir = yamlCfg.Assets.CaptchaFontDir
	}

	if yamlCfg.Tools.ConvertPath != "" {
		cfg.Tools.ConvertPath = yamlCfg.Tools.ConvertPath
	}
	if yamlCfg.Tools.FFmpegPath != "" {
		cfg.Tools.FFmpegPath = yamlCfg.Tools.FFmpegPath
	}
}

func applyDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}

// applyEnvConfig applies environment variable configuration. Empty values
// never clobber earlier sources.
func applyEnvConfig(cfg *Config) {
	applyEnvString(&cfg.Site.Name, "CHANFRONT_SITE_NAME")
	if hosts := strings.TrimSpace(os.Getenv("CHANFRONT_ALLOWED_HOSTS")); hosts != "" {
		if parsed := parseHostList(hosts); len(parsed) > 0 {
			cfg.Site.AllowedHosts = parsed
		}
	}
	applyEnvBool(&cfg.Site.Debug, "CHANFRONT_DEBUG")
	applyEnvString(&cfg.Site.SecretKey, "CHANFRONT_SECRET_KEY")
	applyEnvString(&cfg.Site.Language, "CHANFRONT_LANGUAGE")
	applyEnvString(&cfg.Site.TimeZone, "CHANFRONT_TIME_ZONE")

	applyEnvString(&cfg.HTTP.Listen, "CHANFRONT_LISTEN")
	if rps := strings.TrimSpace(os.Getenv("CHANFRONT_RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.HTTP.RateLimitRPS = value
		}
	}
	if burst := strings.TrimSpace(os.Getenv("CHANFRONT_RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.HTTP.RateLimitBurst = value
		}
	}

	applyEnvString(&cfg.Database.Engine, "CHANFRONT_DB_ENGINE")
	applyEnvString(&cfg.Database.Host, "CHANFRONT_DB_HOST")
	applyEnvPort(&cfg.Database.Port, "CHANFRONT_DB_PORT")
	applyEnvString(&cfg.Database.Name, "CHANFRONT_DB_NAME")
	applyEnvString(&cfg.Database.User, "CHANFRONT_DB_USER")
	applyEnvString(&cfg.Database.Password, "CHANFRONT_DB_PASSWORD")
	applyEnvString(&cfg.Database.SSLMode, "CHANFRONT_DB_SSLMODE")

	applyEnvString(&cfg.NNTP.Host, "CHANFRONT_NNTP_HOST")
	applyEnvPort(&cfg.NNTP.Port, "CHANFRONT_NNTP_PORT")
	applyEnvString(&cfg.NNTP.User, "CHANFRONT_NNTP_USER")
	applyEnvString(&cfg.NNTP.Password, "CHANFRONT_NNTP_PASSWORD")

	applyEnvString(&cfg.Assets.Root, "CHANFRONT_ASSETS_ROOT")
	applyEnvString(&cfg.Assets.StaticRoot, "CHANFRONT_STATIC_ROOT")
	applyEnvString(&cfg.Assets.StaticURL, "CHANFRONT_STATIC_URL")
	applyEnvString(&cfg.Assets.MediaRoot, "CHANFRONT_MEDIA_ROOT")
	applyEnvString(&cfg.Assets.MediaURL, "CHANFRONT_MEDIA_URL")
	applyEnvString(&cfg.Assets.CaptchaFontDir, "CHANFRONT_FONT_DIR")

	applyEnvString(&cfg.Tools.ConvertPath, "CHANFRONT_CONVERT_PATH")
	applyEnvString(&cfg.Tools.FFmpegPath, "CHANFRONT_FFMPEG_PATH")
}

func applyEnvString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func applyEnvBool(dst *bool, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*dst = parsed
		}
	}
}

func applyEnvPort(dst *int, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if port, err := strconv.Atoi(value); err == nil && port > 0 && port <= 65535 {
			*dst = port
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Listen != nil && *overrides.Listen != "" {
		cfg.HTTP.Listen = *overrides.Listen
	}

	if overrides.NNTPAddr != nil && *overrides.NNTPAddr != "" {
		host, port, err := parseHostPort(*overrides.NNTPAddr)
		if err != nil {
			return fmt.Errorf("parse nntp address: %w", err)
		}
		cfg.NNTP.Host = host
		cfg.NNTP.Port = port
	}

	if overrides.DBEngine != nil && *overrides.DBEngine != "" {
		cfg.Database.Engine = *overrides.DBEngine
	}

	if overrides.DBName != nil && *overrides.DBName != "" {
		cfg.Database.Name = *overrides.DBName
	}

	if overrides.SiteName != nil && *overrides.SiteName != "" {
		cfg.Site.Name = *overrides.SiteName
	}

	if overrides.Debug != nil {
		cfg.Site.Debug = *overrides.Debug
	}

	return nil
}
