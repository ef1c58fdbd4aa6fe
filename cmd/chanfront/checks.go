package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/overchan/chanfront/internal/config"
	"github.com/overchan/chanfront/internal/fonts"
	"github.com/overchan/chanfront/internal/hosts"
)

// runChecks verifies that the filesystem and endpoints a resolved
// configuration points at actually exist. Each problem is logged; the
// returned slice is empty when everything passed.
func runChecks(cfg config.Config, logger *zap.Logger) []string {
	var problems []string
	fail := func(msg string, fields ...zap.Field) {
		problems = append(problems, msg)
		logger.Error(msg, fields...)
	}

	if _, err := hosts.NewMatcher(cfg.Site.AllowedHosts, cfg.Site.Debug); err != nil {
		fail("invalid allowed hosts", zap.Error(err))
	}

	if _, err := cfg.Database.DSN(); err != nil {
		fail("cannot build database DSN", zap.Error(err))
	}

	for _, dir := range []struct {
		name string
		path string
	}{
		{"static root", cfg.Assets.StaticRoot},
		{"media root", cfg.Assets.MediaRoot},
	} {
		info, err := os.Stat(dir.path)
		switch {
		case err != nil:
			fail("missing "+dir.name, zap.String("path", dir.path), zap.Error(err))
		case !info.IsDir():
			fail(dir.name+" is not a directory", zap.String("path", dir.path))
		}
	}

	for _, tool := range []struct {
		name string
		path string
	}{
		{"convert", cfg.Tools.ConvertPath},
		{"ffmpeg", cfg.Tools.FFmpegPath},
	} {
		if _, err := os.Stat(tool.path); err != nil {
			fail("missing "+tool.name+" binary", zap.String("path", tool.path), zap.Error(err))
		}
	}

	store := fonts.NewStore(cfg.Assets.CaptchaFontDir)
	if err := store.Scan(); err != nil {
		fail("cannot scan captcha fonts", zap.String("dir", cfg.Assets.CaptchaFontDir), zap.Error(err))
	} else if store.Len() == 0 {
		logger.Warn("no captcha fonts found", zap.String("dir", cfg.Assets.CaptchaFontDir))
	} else {
		logger.Info("captcha fonts found",
			zap.String("dir", cfg.Assets.CaptchaFontDir),
			zap.Int("count", store.Len()))
	}

	return problems
}
