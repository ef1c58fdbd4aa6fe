package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHANFRONT_SITE_NAME", "CHANFRONT_ALLOWED_HOSTS", "CHANFRONT_DEBUG",
		"CHANFRONT_SECRET_KEY", "CHANFRONT_LISTEN", "CHANFRONT_DB_ENGINE",
		"CHANFRONT_DB_HOST", "CHANFRONT_DB_PORT", "CHANFRONT_DB_NAME",
		"CHANFRONT_NNTP_HOST", "CHANFRONT_NNTP_PORT", "CHANFRONT_NNTP_USER",
		"CHANFRONT_NNTP_PASSWORD", "CHANFRONT_FONT_DIR",
		"CHANFRONT_STATIC_URL", "CHANFRONT_MEDIA_URL",
		"CHANFRONT_RATE_LIMIT_RPS", "CHANFRONT_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Site.Name != defaultSiteName {
		t.Fatalf("expected default site name %s, got %s", defaultSiteName, cfg.Site.Name)
	}
	if !cfg.Site.Debug {
		t.Fatalf("expected debug on by default")
	}
	if cfg.NNTP.Port != 1129 {
		t.Fatalf("expected default nntp port 1129, got %d", cfg.NNTP.Port)
	}
	if cfg.NNTP.Host != "127.0.0.1" {
		t.Fatalf("unexpected default nntp host: %s", cfg.NNTP.Host)
	}
	if cfg.Database.Engine != EnginePostgres {
		t.Fatalf("expected postgres engine, got %s", cfg.Database.Engine)
	}
	if cfg.Database.Host != "/var/run/postgresql" {
		t.Fatalf("unexpected default database host: %s", cfg.Database.Host)
	}
	if cfg.HTTP.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.HTTP.ShutdownGracePeriod)
	}
	if want := filepath.Join("assets", "fonts"); cfg.Assets.CaptchaFontDir != want {
		t.Fatalf("expected font dir %s, got %s", want, cfg.Assets.CaptchaFontDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANFRONT_SITE_NAME", "board.example.tld")
	t.Setenv("CHANFRONT_NNTP_HOST", "news.example.tld")
	t.Setenv("CHANFRONT_NNTP_PORT", "1119")
	t.Setenv("CHANFRONT_ALLOWED_HOSTS", "board.example.tld, .mirror.tld")
	t.Setenv("CHANFRONT_STATIC_URL", "/assets/")
	t.Setenv("CHANFRONT_MEDIA_URL", "/files/")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Site.Name != "board.example.tld" {
		t.Fatalf("expected overridden site name, got %s", cfg.Site.Name)
	}
	if cfg.NNTP.Addr() != "news.example.tld:1119" {
		t.Fatalf("unexpected nntp addr: %s", cfg.NNTP.Addr())
	}
	if len(cfg.Site.AllowedHosts) != 2 || cfg.Site.AllowedHosts[1] != ".mirror.tld" {
		t.Fatalf("unexpected allowed hosts: %v", cfg.Site.AllowedHosts)
	}
	if cfg.Assets.StaticURL != "/assets/" || cfg.Assets.MediaURL != "/files/" {
		t.Fatalf("unexpected asset URLs: %s %s", cfg.Assets.StaticURL, cfg.Assets.MediaURL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "chanfront.yaml")
	raw := `
site:
  name: overchan.example
  debug: false
  secret_key: s3cret
  allowed_hosts:
    - overchan.example
http:
  listen: "9090"
  shutdown_grace_period: 3s
database:
  engine: sqlite3
  name: /var/lib/chanfront/board.db
nntp:
  host: "::1"
  port: 5119
  user: reader
  password: hunter2
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Site.Name != "overchan.example" {
		t.Fatalf("unexpected site name: %s", cfg.Site.Name)
	}
	if cfg.Site.Debug {
		t.Fatalf("expected debug off")
	}
	if cfg.HTTP.Listen != "9090" {
		t.Fatalf("unexpected listen: %s", cfg.HTTP.Listen)
	}
	if cfg.HTTP.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("unexpected grace period: %s", cfg.HTTP.ShutdownGracePeriod)
	}
	if cfg.NNTP.Addr() != "[::1]:5119" {
		t.Fatalf("unexpected nntp addr: %s", cfg.NNTP.Addr())
	}
	if !cfg.NNTP.HasAuth() {
		t.Fatalf("expected nntp auth to be configured")
	}
	if cfg.Database.Engine != EngineSQLite {
		t.Fatalf("unexpected engine: %s", cfg.Database.Engine)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANFRONT_SITE_NAME", "env.example")
	t.Setenv("CHANFRONT_LISTEN", "7070")

	path := filepath.Join(t.TempDir(), "chanfront.yaml")
	if err := os.WriteFile(path, []byte("site:\n  name: yaml.example\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	siteName := "cli.example"
	cfg, err := Load(&CLIOverrides{
		ConfigFile: path,
		SiteName:   &siteName,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Site.Name != "cli.example" {
		t.Fatalf("expected CLI override to win, got %s", cfg.Site.Name)
	}
	if cfg.HTTP.Listen != "7070" {
		t.Fatalf("expected env listen to apply, got %s", cfg.HTTP.Listen)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("site: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("non-debug requires secret key", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Site.Debug = false
		cfg.Site.AllowedHosts = []string{"board.example.tld"}
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for placeholder secret key")
		}
		cfg.Site.SecretKey = "real-secret"
		if err := validateConfig(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-debug requires allowed hosts", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Site.Debug = false
		cfg.Site.SecretKey = "real-secret"
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for empty allowed hosts")
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Database.Engine = "oracle"
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for unknown engine")
		}
	})

	t.Run("sqlite requires name", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Database.Engine = EngineSQLite
		cfg.Database.Name = ""
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for sqlite without file name")
		}
	})

	t.Run("nntp port range", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.NNTP.Port = 70000
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for out-of-range port")
		}
	})

	t.Run("listen address forms", func(t *testing.T) {
		for _, listen := range []string{"8080", ":8080", "127.0.0.1:8080"} {
			cfg := defaultConfig()
			cfg.HTTP.Listen = listen
			if err := validateConfig(cfg); err != nil {
				t.Fatalf("unexpected error for %q: %v", listen, err)
			}
		}
		cfg := defaultConfig()
		cfg.HTTP.Listen = "not-a-port"
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for invalid listen value")
		}
	})
}

func TestRedacted(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Password = "dbpass"
	cfg.NNTP.Password = "newspass"

	redacted := cfg.Redacted()
	if redacted.Site.SecretKey == cfg.Site.SecretKey {
		t.Fatalf("expected secret key to be masked")
	}
	if redacted.Database.Password == "dbpass" || redacted.NNTP.Password == "newspass" {
		t.Fatalf("expected passwords to be masked")
	}
	if cfg.Database.Password != "dbpass" {
		t.Fatalf("expected original config to be untouched")
	}
}

func TestDumpYAMLRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := defaultConfig()
	cfg.Site.AllowedHosts = []string{"board.example.tld"}
	cfg.HTTP.RateLimitRPS = 7.5
	cfg.HTTP.RateLimitBurst = 13

	out, err := cfg.DumpYAML()
	if err != nil {
		t.Fatalf("DumpYAML returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dumped.yaml")
	if err := os.WriteFile(path, out, 0o600); err != nil {
		t.Fatalf("write dumped config: %v", err)
	}

	reloaded, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("reload dumped config: %v", err)
	}
	if reloaded.Site.Name != cfg.Site.Name || reloaded.NNTP.Port != cfg.NNTP.Port {
		t.Fatalf("round trip mismatch: site %q nntp %d", reloaded.Site.Name, reloaded.NNTP.Port)
	}
	if reloaded.HTTP.RateLimitRPS != 7.5 || reloaded.HTTP.RateLimitBurst != 13 {
		t.Fatalf("round trip lost rate limits: rps %v burst %d",
			reloaded.HTTP.RateLimitRPS, reloaded.HTTP.RateLimitBurst)
	}
}

func TestParseHostPort(t *testing.T) {
	host, port, err := parseHostPort("news.example.tld:1119")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "news.example.tld" || port != 1119 {
		t.Fatalf("unexpected result: %s %d", host, port)
	}

	if _, _, err := parseHostPort("no-port"); err == nil {
		t.Fatalf("expected error for missing port")
	}
	if _, _, err := parseHostPort("host:0"); err == nil {
		t.Fatalf("expected error for port zero")
	}
}
