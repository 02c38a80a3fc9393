package middleware

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheMiddleware short-circuits hot admin GET reads through Redis.
// It fails open: any Redis problem just means the request hits the
// database as if the cache were not there.
type CacheMiddleware struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheMiddleware creates a response cache. A nil client disables
// caching entirely.
func NewCacheMiddleware(client *redis.Client, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{client: client, ttl: ttl}
}

// Cache wraps a handler with read-through response caching
func (m *CacheMiddleware) Cache(next http.Handler) http.Handler {
	if m.client == nil || m.ttl <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := "respcache:" + r.URL.RequestURI()
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if cached, err := m.client.Get(ctx, key).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		} else if err != redis.Nil {
			log.Printf("⚠️ Cache read failed, serving uncached: %v", err)
		}

		recorder := &cachingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		// Only successful JSON payloads are worth replaying
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			setCtx, setCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer setCancel()
			if err := m.client.Set(setCtx, key, recorder.body.Bytes(), m.ttl).Err(); err != nil {
				log.Printf("⚠️ Cache write failed: %v", err)
			}
		}
	})
}

// Invalidate drops every cached response. Called after writes that
// change what the admin endpoints would return.
func (m *CacheMiddleware) Invalidate(ctx context.Context) {
	if m.client == nil {
		return
	}

	iter := m.client.Scan(ctx, 0, "respcache:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("⚠️ Cache invalidation failed for %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("⚠️ Cache invalidation scan failed: %v", err)
	}
}

type cachingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (w *cachingResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *cachingResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
