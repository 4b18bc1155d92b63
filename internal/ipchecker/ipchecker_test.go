package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)
	assert.True(t, checker.IsTrustedSubnetEmpty())
	assert.False(t, checker.Check(net.ParseIP("127.0.0.1")))

	_, err = New("not a cidr")
	assert.Error(t, err)
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
		wantErr    bool
	}{
		{
			name:       "X-Real-IP wins",
			headers:    map[string]string{"X-Real-IP": "10.1.2.3", "X-Forwarded-For": "192.168.0.1"},
			remoteAddr: "127.0.0.1:1234",
			want:       "10.1.2.3",
		},
		{
			name:       "first X-Forwarded-For address",
			headers:    map[string]string{"X-Forwarded-For": "10.9.9.9, 192.168.0.1"},
			remoteAddr: "127.0.0.1:1234",
			want:       "10.9.9.9",
		},
		{
			name:       "garbage in X-Forwarded-For",
			headers:    map[string]string{"X-Forwarded-For": "nonsense"},
			remoteAddr: "127.0.0.1:1234",
			wantErr:    true,
		},
		{
			name:       "remote address",
			remoteAddr: "10.0.0.5:5555",
			want:       "10.0.0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			request.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}

			ip, err := checker.GetClientIP(request)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ip.String())
		})
	}
}

func TestOnlyTrusted(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	handler := checker.OnlyTrusted(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	trusted := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	trusted.Header.Set("X-Real-IP", "10.0.0.7")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, trusted)
	assert.Equal(t, http.StatusOK, recorder.Code)

	untrusted := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	untrusted.Header.Set("X-Real-IP", "192.168.1.1")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, untrusted)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
