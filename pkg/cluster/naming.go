package cluster

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const (
	// dynamicNamePrefix tags hash-derived names so they are visually
	// distinguishable from user-declared profile names and cannot collide
	// with the reserved default name.
	dynamicNamePrefix = "dyn-"

	// dynamicNameHexLen is the length of the hash prefix kept in derived
	// names. 12 hex chars (48 bits) is short enough to read in logs and
	// long enough that collisions are not a practical concern for the
	// handful of clusters a process talks to.
	dynamicNameHexLen = 12
)

// NormalizeURL canonicalizes a backend URL for identity purposes: the scheme
// and host are lower-cased, the default port for the scheme is stripped
// (443 for https, 80 for http), a single trailing slash is removed from the
// path, and the query string is preserved.
//
// Normalization failures fall back to the verbatim input rather than
// erroring: identity de-duplication degrades gracefully instead of breaking
// registration.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	host, port := u.Hostname(), u.Port()
	if (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		u.Host = host
	}

	if strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// DeriveStableName maps a normalized URL to a stable synthetic profile name.
// The same normalized URL always yields the same name, which is what makes
// dynamic registration idempotent.
func DeriveStableName(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return dynamicNamePrefix + hex.EncodeToString(sum[:])[:dynamicNameHexLen]
}
