package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPooledClient_SharesTransport(t *testing.T) {
	a := NewPooledClient(time.Second)
	b := NewPooledClient(5 * time.Second)

	assert.Same(t, a.Transport, b.Transport)
	assert.Equal(t, time.Second, a.Timeout)
	assert.Equal(t, 5*time.Second, b.Timeout)
}

func TestNewPooledClient_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	resp, err := NewPooledClient(50 * time.Millisecond).Get(server.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
}
