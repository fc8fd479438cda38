package middleware

import (
	"bytes"
	"context"
	"log"
	"net/http"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
)

// IdempotencyHeader names the client-chosen key of a mutation
const IdempotencyHeader = "Idempotency-Key"

// Idempotency replays the stored response when a mutation is retried with
// the same key on the same route. Only 2xx responses are stored. Must run
// after RequireStaff.
func Idempotency(store cache.IdempotencyCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			tenantID := GetTenantID(r.Context())
			scoped := routeScoped(r, key)

			if stored, err := store.Get(r.Context(), tenantID, scoped); err != nil {
				log.Printf("[Idempotency] Warning: lookup %s: %v", key, err)
			} else if stored != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				w.Write(stored.Body)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			ctx := context.WithValue(r.Context(), IdempotencyKeyKey, key)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status >= 200 && rec.status < 300 {
				resp := &cache.StoredResponse{Status: rec.status, Body: rec.body.Bytes()}
				if err := store.Put(r.Context(), tenantID, scoped, resp); err != nil {
					log.Printf("[Idempotency] Warning: store %s: %v", key, err)
				}
			}
		})
	}
}

// routeScoped ties a client key to the method and path it was sent to
func routeScoped(r *http.Request, key string) string {
	return r.Method + " " + r.URL.Path + " " + key
}

// recorder copies the response so it can be stored
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
