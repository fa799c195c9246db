package urlnorm

import (
	"net/netip"
	"strings"
)

// Class is the reachability class of a URL.
type Class string

const (
	Localhost Class = "localhost"
	Remote    Class = "remote"
)

// Classify returns Localhost when the URL host can only be reached from
// the local machine or network, Remote otherwise.
// Unparseable URLs are Remote; they fail later as dead links.
func Classify(raw string) Class {
	u, err := parse(raw)
	if err != nil {
		return Remote
	}
	if IsLocalHost(u.Hostname()) {
		return Localhost
	}
	return Remote
}

// IsLocalhost is shorthand for Classify(raw) == Localhost.
func IsLocalhost(raw string) bool {
	return Classify(raw) == Localhost
}

// IsLocalHost reports whether host (no port) is a loopback name,
// a loopback/unspecified address, or a private or link-local address.
func IsLocalHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return false
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.WithZone("").Unmap()

	return addr.IsLoopback() ||
		addr.IsUnspecified() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast()
}
