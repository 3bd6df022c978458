package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/bizdesk/pkg/clientip"
)

func TestResolver_IP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resolver   clientip.Resolver
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr",
			resolver:   clientip.New(),
			remoteAddr: "203.0.113.7:5123",
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted headers are ignored",
			resolver:   clientip.New(),
			remoteAddr: "203.0.113.7:5123",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "first forwarded address",
			resolver:   clientip.New(clientip.DefaultHeaders...),
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "garbage, 198.51.100.1, 10.0.0.2"},
			want:       "198.51.100.1",
		},
		{
			name:       "header order",
			resolver:   clientip.New(clientip.DefaultHeaders...),
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9", "CF-Connecting-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
		{
			name:       "invalid header falls back",
			resolver:   clientip.New("X-Real-IP"),
			remoteAddr: "[2001:db8::1]:443",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "2001:db8::1",
		},
		{
			name:       "remote addr without port",
			resolver:   clientip.New(),
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "nothing parses",
			resolver:   clientip.New(),
			remoteAddr: "@",
			want:       "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.IP(r))
		})
	}
}

func TestResolver_Middleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := clientip.New().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.FromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5123"
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "203.0.113.7", seen)
}
