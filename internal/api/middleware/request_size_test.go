package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestSize(t *testing.T) {
	tests := []struct {
		name           string
		maxBytes       int64
		bodySize       int
		chunked        bool
		expectStatus   int
		expectBodyRead bool
	}{
		{
			name:           "small request accepted",
			maxBytes:       1024,
			bodySize:       512,
			expectStatus:   http.StatusOK,
			expectBodyRead: true,
		},
		{
			name:           "exact limit accepted",
			maxBytes:       1024,
			bodySize:       1024,
			expectStatus:   http.StatusOK,
			expectBodyRead: true,
		},
		{
			name:           "declared oversize rejected before handler",
			maxBytes:       1024,
			bodySize:       2048,
			expectStatus:   http.StatusRequestEntityTooLarge,
			expectBodyRead: false,
		},
		{
			name:           "chunked oversize fails on read",
			maxBytes:       1024,
			bodySize:       2048,
			chunked:        true,
			expectStatus:   http.StatusRequestEntityTooLarge,
			expectBodyRead: false,
		},
		{
			name:           "zero limit falls back to default",
			maxBytes:       0,
			bodySize:       int(DefaultMaxBodySize) + 1,
			expectStatus:   http.StatusRequestEntityTooLarge,
			expectBodyRead: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyRead := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					assert.Contains(t, err.Error(), "http: request body too large")
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				bodyRead = true
				assert.Len(t, body, tt.bodySize, "body size should match")
				w.WriteHeader(http.StatusOK)
			})

			middleware := RequestSize(tt.maxBytes)(handler)

			body := bytes.Repeat([]byte("x"), tt.bodySize)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/routes", bytes.NewReader(body))
			if tt.chunked {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()

			middleware.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectStatus, rec.Code, "status code should match")
			assert.Equal(t, tt.expectBodyRead, bodyRead, "body read status should match")
		})
	}
}
