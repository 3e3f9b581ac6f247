// Package trust maps a source URL to a trust weight used by the
// resolver's weighted voting.
package trust

import (
	"net/url"
	"strings"
)

const (
	WeightGov     = 1.0
	WeightEdu     = 0.9
	WeightPress   = 0.8
	WeightDefault = 0.5
)

// DefaultAllowlist is the curated set of official Vietnamese press
// domains scored at WeightPress. Loaded at startup; changing it is a
// configuration change, not a code change.
var DefaultAllowlist = map[string]struct{}{
	"vnexpress.net":  {},
	"nongnghiep.vn":  {},
	"baochinhphu.vn": {},
	"vov.vn":         {},
	"nhandan.vn":     {},
	"sggp.org.vn":    {},
	"baotintuc.vn":   {},
}

// Scorer is a pure function trust(url) -> [0,1], parameterized by an
// allowlist so tests and deployments can pin their own sample URLs.
type Scorer struct {
	allowlist map[string]struct{}
}

// New builds a Scorer over the given allowlist of official-press
// hostnames. A nil allowlist falls back to DefaultAllowlist.
func New(allowlist map[string]struct{}) Scorer {
	if allowlist == nil {
		allowlist = DefaultAllowlist
	}
	return Scorer{allowlist: allowlist}
}

// Score returns the trust weight for rawURL. Empty or unparseable input,
// and anything not matching .gov.vn, .edu.vn, or the allowlist, scores
// WeightDefault.
func (s Scorer) Score(rawURL string) float64 {
	host := hostOf(rawURL)
	if host == "" {
		return WeightDefault
	}

	switch {
	case strings.HasSuffix(host, ".gov.vn") || host == "gov.vn":
		return WeightGov
	case strings.HasSuffix(host, ".edu.vn") || host == "edu.vn":
		return WeightEdu
	}

	if _, ok := s.allowlist[host]; ok {
		return WeightPress
	}
	return WeightDefault
}

// hostOf extracts the lowercased, port-stripped host from rawURL. It
// tolerates bare hostnames (no scheme) the way trust-table tests often
// pin plain domain strings.
func hostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "//" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Default is a package-level convenience Scorer over DefaultAllowlist,
// used by components that don't need a custom allowlist injected.
var Default = New(nil)

// Score is a shorthand for Default.Score, matching the pure-function
// signature used throughout this package.
func Score(rawURL string) float64 {
	return Default.Score(rawURL)
}
