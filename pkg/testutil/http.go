// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Serve sends one request through h. A string body is sent raw so tests can
// submit malformed JSON; any other non-nil body is marshaled.
func Serve(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON fails the test unless the response body decodes into T.
func DecodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response: %s", rr.Body.String())
	return out
}

// AssertError checks the status and the error code of the JSON error
// envelope, and returns the envelope for further assertions.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) map[string]string {
	t.Helper()
	assert.Equal(t, status, rr.Code, "status")
	envelope := DecodeJSON[map[string]string](t, rr)
	assert.Equal(t, code, envelope["error"], "error code")
	return envelope
}
