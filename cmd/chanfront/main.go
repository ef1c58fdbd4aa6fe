package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/overchan/chanfront/internal/application"
	"github.com/overchan/chanfront/internal/config"
	"github.com/overchan/chanfront/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("chanfront", "Web frontend for an NNTP-backed imageboard")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	listen := kingpinApp.Flag("listen", "HTTP listen address or port").String()
	nntpAddr := kingpinApp.Flag("nntp-addr", "NNTP server address in host:port form").String()
	dbEngine := kingpinApp.Flag("db-engine", "Database engine (postgres or sqlite3)").String()
	dbName := kingpinApp.Flag("db-name", "Database name, or file path for sqlite3").String()
	siteName := kingpinApp.Flag("site-name", "Site display name").String()
	var debugSet bool
	debug := kingpinApp.Flag("debug", "Force debug mode on or off").IsSetByUser(&debugSet).Bool()

	serveCmd := kingpinApp.Command("serve", "Run the frontend HTTP server").Default()
	checkCmd := kingpinApp.Command("check", "Validate the configuration and the filesystem it points at")
	showCmd := kingpinApp.Command("show", "Print the resolved configuration as YAML with secrets redacted")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}
	if *listen != "" {
		overrides.Listen = listen
	}
	if *nntpAddr != "" {
		overrides.NNTPAddr = nntpAddr
	}
	if *dbEngine != "" {
		overrides.DBEngine = dbEngine
	}
	if *dbName != "" {
		overrides.DBName = dbName
	}
	if *siteName != "" {
		overrides.SiteName = siteName
	}
	if debugSet {
		overrides.Debug = debug
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case showCmd.FullCommand():
		out, err := cfg.Redacted().DumpYAML()
		if err != nil {
			kingpinApp.Fatalf("failed to render configuration: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	logger, err := logging.New(cfg.Site.Debug)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case checkCmd.FullCommand():
		if problems := runChecks(cfg, logger); len(problems) > 0 {
			logger.Error("configuration check failed", zap.Int("problems", len(problems)))
			os.Exit(1)
		}
		logger.Info("configuration check passed")
	case serveCmd.FullCommand():
		serve(cfg, logger)
	}
}

func serve(cfg config.Config, logger *zap.Logger) {
	logger.Info("starting frontend",
		zap.String("site", cfg.Site.Name),
		zap.String("nntp_addr", cfg.NNTP.Addr()),
		zap.Bool("nntp_auth", cfg.NNTP.HasAuth()),
		zap.String("db_engine", cfg.Database.Engine),
		zap.Bool("debug", cfg.Site.Debug),
	)

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.HTTP.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
