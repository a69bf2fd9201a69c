package userdir

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventparticipation/internal/adapters/upstream"
	"eventparticipation/internal/domain"
)

func TestHTTPDirectory_GetUser(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *domain.UserProfile
		wantErr error
	}{
		{
			name:   "found",
			status: http.StatusOK,
			body:   `{"id": 42, "username": "asha", "email": "asha@example.com", "phone_number": "98450"}`,
			want:   &domain.UserProfile{ID: "u 1", Name: "asha", Email: "asha@example.com", PhoneNumber: "98450"},
		},
		{name: "unknown user", status: http.StatusNotFound, wantErr: domain.ErrNotFound},
		{name: "directory down", status: http.StatusBadGateway, wantErr: domain.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/users/u%201", r.URL.EscapedPath())
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			dir := NewHTTPDirectory(upstream.NewClient(ServiceName, srv.URL, time.Second, upstream.RetryPolicy{}, nil))
			got, err := dir.GetUser(context.Background(), "u 1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
