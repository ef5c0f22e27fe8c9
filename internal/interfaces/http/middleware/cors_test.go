package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_PreflightRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://app.example.com"}
	r := newEngine(CORS(config))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compounds/analyze", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(t, r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORS_SimpleRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://app.example.com"}
	r := newEngine(CORS(config))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elements/Na", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(t, r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://app.example.com"}
	r := newEngine(CORS(config))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elements/Na", nil)
	req.Header.Set("Origin", "https://evil.test")
	w := serve(t, r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginHeader(t *testing.T) {
	r := newEngine(CORS(DefaultCORSConfig()))
	w := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/elements/Na", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcards(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		credentials bool
		origin      string
		want        string
	}{
		{"any origin", []string{"*"}, false, "https://x.test", "*"},
		{"any origin with credentials echoes", []string{"*"}, true, "https://x.test", "https://x.test"},
		{"subdomain match", []string{"*.example.com"}, false, "https://lab.example.com", "https://lab.example.com"},
		{"subdomain mismatch", []string{"*.example.com"}, false, "https://example.org", ""},
		{"case insensitive", []string{"https://App.Example.com"}, false, "https://app.example.com", "https://app.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCORSConfig()
			config.AllowedOrigins = tt.allowed
			config.AllowCredentials = tt.credentials
			r := newEngine(CORS(config))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/elements/Na", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(t, r, req)

			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.credentials {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
