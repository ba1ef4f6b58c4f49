package middleware

import (
	"crypto/subtle"
	"net/http"

	"secretstore-api/internal/http/httperr"
	"secretstore-api/internal/observability/logger"

	"go.uber.org/zap"
)

// RelayOriginHeader carries the shared secret that identifies the bot relay.
const RelayOriginHeader = "X-Requested-By"

// RelayOriginMiddleware gates the pairing callback behind a shared-secret
// header instead of the identity provider. The relay is the only caller that
// may exchange a pairing code; user tokens do not open this route.
func RelayOriginMiddleware(sharedSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			got := r.Header.Get(RelayOriginHeader)
			if got == "" {
				log.Warn(ctx, "relay origin header missing",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidOrigin, "origin header required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(got), []byte(sharedSecret)) != 1 {
				log.Warn(ctx, "relay origin check failed",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				httperr.Forbidden403(w, ctx, httperr.ErrCodeInvalidOrigin, "origin not allowed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
