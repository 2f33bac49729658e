package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"opencollective/pkg/requestcontext"
)

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them, with a device summary, to the context for use by services.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua, DeviceSummary(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceSummary condenses a User-Agent into "browser/os", or "bot/<name>".
func DeviceSummary(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if ua.Bot() {
		return "bot/" + browser
	}
	os := ua.OSInfo().Name
	if os == "" {
		os = "unknown"
	}
	if browser == "" {
		browser = "unknown"
	}
	return browser + "/" + os
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port", or "[::1]:port" for IPv6
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}
