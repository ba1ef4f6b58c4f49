package middleware

import (
	"fmt"
	"net/http"
	"time"

	"secretstore-api/internal/auth"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces a sliding-window rate limit per caller. The
// caller key is the authenticated user id when claims are present, the remote
// address otherwise (the pairing callback has no user token).
func RateLimitMiddleware(limiter *ratelimit.RedisRateLimiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			callerID := sanitizeRemoteAddr(r.RemoteAddr)
			if claims, ok := auth.GetClaims(ctx); ok {
				callerID = claims.UserID()
			}

			allowed, remaining, err := limiter.AllowRequest(ctx, callerID, limitPerMin, 60)
			if err != nil {
				// Redis being down must not take the API with it.
				log.Error(ctx, "rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(60*time.Second).Unix()))

			if !allowed {
				span := trace.SpanFromContext(ctx)
				span.AddEvent("rate_limit_exceeded")

				log.Warn(ctx, "rate limit exceeded",
					zap.String("caller_id", callerID),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
