// Package requestcontext carries request-scoped values (actor, client
// metadata, request id, request time) without depending on net/http.
// Middleware writes them; services and stores read them.
package requestcontext

import (
	"context"
	"time"

	id "opencollective/pkg/domain"
)

type key int

const (
	userIDKey key = iota
	sessionIDKey
	clientIPKey
	userAgentKey
	deviceKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// UserID is the authenticated actor, or the nil id for anonymous requests.
func UserID(ctx context.Context) id.UserID {
	return value[id.UserID](ctx, userIDKey)
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func SessionID(ctx context.Context) id.SessionID {
	return value[id.SessionID](ctx, sessionIDKey)
}

func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func ClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey)
}

func UserAgent(ctx context.Context) string {
	return value[string](ctx, userAgentKey)
}

// Device is the "browser/os" summary derived from the User-Agent.
func Device(ctx context.Context) string {
	return value[string](ctx, deviceKey)
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent, device string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	ctx = context.WithValue(ctx, userAgentKey, userAgent)
	return context.WithValue(ctx, deviceKey, device)
}

func RequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time captured when the request started, so every row written by
// one request shares a timestamp. Outside a request it is time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
