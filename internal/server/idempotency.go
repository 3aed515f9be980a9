package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// idempotencyHeader is the standard HTTP header for idempotency keys
	idempotencyHeader = "Idempotency-Key"

	// idempotencyCacheTTL defines how long responses are cached in Redis
	idempotencyCacheTTL = 24 * time.Hour

	// lockTimeout prevents indefinite locks if a request crashes
	lockTimeout = 10 * time.Second

	redisKeyPrefix = "idempotency:"
	lockKeyPrefix  = "lock:"
)

// responseRecorder captures the status code and body so a successful
// response can be replayed for a repeated idempotency key
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency returns middleware that caches successful responses in Redis
// keyed by the Idempotency-Key header, so resubmitting a batch does not
// settle its transfers twice. Requests without the header pass through
// untouched.
func Idempotency(rdb *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			cacheKey := redisKeyPrefix + key
			lockKey := lockKeyPrefix + key

			cached, err := rdb.Get(ctx, cacheKey).Result()
			if err == nil {
				logger.Info("idempotency cache hit", zap.String("key", key))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.Write([]byte(cached))
				return
			}

			// Lock out concurrent requests carrying the same key while the
			// first one is still processing.
			acquired, err := rdb.SetNX(ctx, lockKey, "processing", lockTimeout).Result()
			if err != nil {
				logger.Error("idempotency lock acquisition failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
				return
			}
			if !acquired {
				writeJSON(w, http.StatusConflict, errorResponse{
					Error: "a request with this idempotency key is currently being processed",
				})
				return
			}
			defer func() {
				if err := rdb.Del(ctx, lockKey).Err(); err != nil {
					logger.Warn("failed to release idempotency lock", zap.Error(err))
				}
			}()

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				if err := rdb.Set(ctx, cacheKey, recorder.body.String(), idempotencyCacheTTL).Err(); err != nil {
					logger.Warn("failed to cache idempotent response", zap.Error(err))
				}
			}
		})
	}
}
