package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	handler := CORS([]string{" https://app.example.com/ "}, next)

	tests := []struct {
		name        string
		method      string
		path        string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantMethods string
	}{
		{
			name: "preflight from allowed origin", method: http.MethodOptions, path: "/participations/start",
			origin: "https://app.example.com", preflight: true,
			wantStatus: http.StatusNoContent, wantOrigin: "https://app.example.com", wantMethods: corsAllowMethods,
		},
		{
			name: "preflight from unknown origin", method: http.MethodOptions, path: "/participations/start",
			origin: "https://evil.example.com", preflight: true,
			wantStatus: http.StatusNoContent,
		},
		{
			name: "request from allowed origin", method: http.MethodGet, path: "/participations/p-1",
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK, wantOrigin: "https://app.example.com",
		},
		{
			name: "request without origin", method: http.MethodGet, path: "/participations/p-1",
			wantStatus: http.StatusOK,
		},
		{
			name: "gateway callback is not offered to browsers", method: http.MethodOptions, path: "/participations/payment-callback",
			origin: "https://app.example.com", preflight: true,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantOrigin != "" {
				assert.Equal(t, corsExposeHeaders, rr.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}
