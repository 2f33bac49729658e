package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"opencollective/pkg/requestcontext"
)

const firefoxLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

func TestClientMetadata(t *testing.T) {
	var ip, device string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		device = requestcontext.Device(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", firefoxLinux)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "Firefox/Linux", device)
}

func TestClientIPFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:4321"
	assert.Equal(t, "::1", ClientIPFromRequest(req))

	req.Header.Set("X-Real-IP", " 198.51.100.2 ")
	assert.Equal(t, "198.51.100.2", ClientIPFromRequest(req))
}

func TestDeviceSummary(t *testing.T) {
	assert.Equal(t, "", DeviceSummary(""))
	assert.Contains(t, DeviceSummary("Googlebot/2.1 (+http://www.google.com/bot.html)"), "bot/")
}
