// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It exposes strongly typed settings for the
// site identity, HTTP server, article database, NNTP backend, asset roots, and
// external tools, resolved once at process start and immutable afterwards.
package config
