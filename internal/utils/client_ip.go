package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the peer address of r. With trustedHops > 0 the request is
// assumed to pass through that many proxies that each append to
// X-Forwarded-For, and the entry added by the outermost trusted proxy is used.
// Entries to its left are client-supplied and ignored.
func ClientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			i := len(parts) - trustedHops
			if i < 0 {
				i = 0
			}
			if ip := strings.TrimSpace(parts[i]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
