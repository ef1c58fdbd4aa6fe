package config

import (
	"fmt"
	"strings"
)

// DSN builds a connection string for the configured engine. For postgres the
// keyword/value form is used; a Host beginning with "/" is a Unix socket
// directory and the port is omitted. For sqlite3 the DSN is the database file
// path itself.
func (d Database) DSN() (string, error) {
	switch d.Engine {
	case EngineSQLite:
		if d.Name == "" {
			return "", fmt.Errorf("sqlite3 engine requires a database file name")
		}
		return d.Name, nil
	case EnginePostgres:
		if d.Host == "" {
			return "", fmt.Errorf("postgres engine requires a host")
		}
		pairs := []string{
			"host=" + quoteDSNValue(d.Host),
		}
		if d.Port > 0 && !strings.HasPrefix(d.Host, "/") {
			pairs = append(pairs, fmt.Sprintf("port=%d", d.Port))
		}
		if d.Name != "" {
			pairs = append(pairs, "dbname="+quoteDSNValue(d.Name))
		}
		if d.User != "" {
			pairs = append(pairs, "user="+quoteDSNValue(d.User))
		}
		if d.Password != "" {
			pairs = append(pairs, "password="+quoteDSNValue(d.Password))
		}
		if d.SSLMode != "" {
			pairs = append(pairs, "sslmode="+quoteDSNValue(d.SSLMode))
		}
		return strings.Join(pairs, " "), nil
	default:
		return "", fmt.Errorf("unsupported database engine %q", d.Engine)
	}
}

// quoteDSNValue wraps a keyword/value DSN value in single quotes when it
// contains characters that would break unquoted parsing.
func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\") {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
