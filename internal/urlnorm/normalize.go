// Package urlnorm canonicalizes bookmark URLs for comparison and
// classifies them as local or remote.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidURL is returned when the input has no scheme or no host.
var ErrInvalidURL = errors.New("invalid url")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize returns the canonical comparison form of raw:
//   - scheme and host are lower-cased
//   - a default port (80 for http, 443 for https) is removed
//   - a path of exactly "/" is removed
//   - query parameters are sorted by key, values untouched
//
// Normalize is idempotent.
func Normalize(raw string) (string, error) {
	u, err := parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[u.Scheme] {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	u.Host = host

	if u.Path == "/" {
		u.Path = ""
		u.RawPath = ""
	}

	u.RawQuery = sortQuery(u.RawQuery)
	u.ForceQuery = false

	return u.String(), nil
}

// Equal reports whether a and b normalize to the same URL.
// Unparseable inputs are never equal.
func Equal(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

func parse(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q needs scheme and host", ErrInvalidURL, raw)
	}
	return u, nil
}

// sortQuery orders raw "k=v" pairs by key without re-encoding them.
func sortQuery(raw string) string {
	if raw == "" {
		return ""
	}

	parts := strings.Split(raw, "&")
	pairs := parts[:0]
	for _, p := range parts {
		if p != "" {
			pairs = append(pairs, p)
		}
	}

	key := func(p string) string {
		k, _, _ := strings.Cut(p, "=")
		return k
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return key(pairs[i]) < key(pairs[j])
	})

	return strings.Join(pairs, "&")
}
