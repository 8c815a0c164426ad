package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// maxBodyBytes bounds interaction payloads. Chat callbacks are a few KB.
const maxBodyBytes = 1 << 20

// rawBodyKey is used to store the raw request body in context.
type rawBodyKey struct{}

// BodyReader reads and buffers the request body so it can be accessed multiple
// times (signature verification, then form or JSON parsing). The raw bytes
// are available through RawBody.
func BodyReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body.Close()

		// Restore body so downstream handlers can read it again
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := context.WithValue(r.Context(), rawBodyKey{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RawBody returns the bytes buffered by BodyReader.
func RawBody(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(rawBodyKey{}).([]byte)
	return body, ok
}
