// Package hosts matches incoming Host headers against the configured
// allowed-hosts patterns. Patterns are exact hostnames, leading-dot suffix
// patterns (".example.tld" matches the domain and any subdomain), or "*"
// which matches everything. An empty pattern set is permitted only in debug
// mode, where it falls back to the local loopback names.
package hosts

import (
	"net"
	"strings"
)

var debugFallbackHosts = []string{"localhost", "127.0.0.1", "::1"}

// Matcher decides whether a request Host header is acceptable.
type Matcher struct {
	matchAll bool
	exact    map[string]struct{}
	suffixes []string
}

// NewMatcher builds a Matcher from allowed-host patterns. In debug mode an
// empty pattern list admits the loopback names instead of rejecting
// everything.
func NewMatcher(patterns []string, debug bool) (*Matcher, error) {
	if len(patterns) == 0 && debug {
		patterns = debugFallbackHosts
	}

	m := &Matcher{
		exact: make(map[string]struct{}, len(patterns)),
	}

	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if err := checkPattern(pattern); err != nil {
			return nil, err
		}
		switch {
		case pattern == "*":
			m.matchAll = true
		case strings.HasPrefix(pattern, "."):
			m.suffixes = append(m.suffixes, strings.TrimPrefix(pattern, "."))
		default:
			m.exact[pattern] = struct{}{}
		}
	}

	return m, nil
}

// Allow reports whether the given Host header value matches the pattern set.
// A port suffix is ignored, matching is case-insensitive, and a trailing dot
// on a fully qualified name is stripped.
func (m *Matcher) Allow(hostport string) bool {
	host := normalizeHost(hostport)
	if host == "" {
		return false
	}
	if m.matchAll {
		return true
	}
	if _, ok := m.exact[host]; ok {
		return true
	}
	for _, suffix := range m.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

func checkPattern(pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}
	if strings.ContainsAny(pattern, "/ \t") {
		return ErrInvalidPattern
	}
	return nil
}

// normalizeHost strips an optional port, brackets around IPv6 literals, a
// trailing dot, and lowercases the result.
func normalizeHost(hostport string) string {
	host := strings.TrimSpace(hostport)
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else {
		host = strings.TrimPrefix(host, "[")
		host = strings.TrimSuffix(host, "]")
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}
