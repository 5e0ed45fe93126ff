package http

import (
	"net"
	"net/http"
	"strings"
)

// clientKey identifies the caller for rate limiting. With trustForwarded the
// first X-Forwarded-For hop wins, which is only sound when a reverse proxy we
// control sets that header. Otherwise the peer address is used.
func clientKey(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}
