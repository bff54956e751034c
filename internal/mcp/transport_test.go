package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/middleware"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
)

func TestLoadTransportConfig(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		want      TransportConfig
		wantError bool
	}{
		{
			name: "defaults",
			want: TransportConfig{Type: TransportStdio, Port: DefaultPort, Host: "0.0.0.0"},
		},
		{
			name: "http transport",
			env:  map[string]string{"MCP_TRANSPORT": "http", "PORT": "9090", "HOST": "127.0.0.1"},
			want: TransportConfig{Type: TransportHTTP, Port: 9090, Host: "127.0.0.1"},
		},
		{
			name:      "unknown transport",
			env:       map[string]string{"MCP_TRANSPORT": "websocket"},
			wantError: true,
		},
		{
			name:      "non numeric port",
			env:       map[string]string{"PORT": "eighty"},
			wantError: true,
		},
		{
			name:      "port out of range",
			env:       map[string]string{"PORT": "70000"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MCP_TRANSPORT", "")
			t.Setenv("PORT", "")
			t.Setenv("HOST", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadTransportConfig()
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestWrapHandler(t *testing.T) {
	_, err := WrapHandler(nil, nil)
	require.Error(t, err)

	limiter := middleware.NewRateLimiter(config.RateLimitConfig{PerMinute: 1})
	t.Cleanup(limiter.Stop)

	wrapped, err := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), limiter)
	require.NoError(t, err)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
