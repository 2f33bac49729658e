package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/httputil"
	"opencollective/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID    string
	SessionID string
	JTI       string
}

// Authenticate resolves an optional bearer token into the request context.
// Requests without an Authorization header continue anonymously; a header
// that is present but invalid is rejected with 401.
func Authenticate(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			userID, sessionID, err := authenticate(validator, header)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			ctx = requestcontext.WithUserID(ctx, userID)
			if !sessionID.IsNil() {
				ctx = requestcontext.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(validator JWTValidator, header string) (id.UserID, id.SessionID, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return id.UserID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return id.UserID{}, id.SessionID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.UserID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	// A missing or malformed session id leaves the session unset.
	sessionID, _ := id.ParseSessionID(claims.SessionID)
	return userID, sessionID, nil
}
