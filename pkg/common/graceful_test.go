package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTimeoutConfig(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "42")
	t.Setenv("WRITE_TIMEOUT", "nope")
	t.Setenv("IDLE_TIMEOUT", "-1")

	cfg := LoadTimeoutConfig(TimeoutConfig{Read: time.Second, Write: 2 * time.Second, Idle: 3 * time.Second})
	assert.Equal(t, 42*time.Second, cfg.Read)
	assert.Equal(t, 2*time.Second, cfg.Write)
	assert.Equal(t, 3*time.Second, cfg.Idle)
}

func TestNewServerWithTimeouts(t *testing.T) {
	cfg := TimeoutConfig{ReadHeader: 1, Read: 2, Write: 3, Idle: 4}
	s := NewServerWithTimeouts(nil, cfg)
	assert.Equal(t, time.Duration(1), s.ReadHeaderTimeout)
	assert.Equal(t, time.Duration(4), s.IdleTimeout)

	base := &http.Server{Addr: ":1234"}
	assert.Same(t, base, NewServerWithTimeouts(base, cfg))
	assert.Equal(t, time.Duration(3), base.WriteTimeout)
}

func TestRunServersRunsHooksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hookRan := make(chan struct{}, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err := RunServersWithShutdown(ctx, []Server{{Name: "test", Server: &http.Server{Addr: "127.0.0.1:0"}}}, time.Second, time.Second,
		nil,
		func(ctx context.Context) error {
			hookRan <- struct{}{}
			return nil
		})
	require.NoError(t, err)
	assert.Len(t, hookRan, 1)
}

func TestRunServersReturnsListenError(t *testing.T) {
	err := RunServersWithShutdown(context.Background(), []Server{{Name: "broken", Server: &http.Server{Addr: "not-a-valid-address"}}}, time.Second, time.Second)
	assert.Error(t, err)
}

func TestWithCors(t *testing.T) {
	h := WithCors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodOptions, "/lookup/city/x", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")

	r = httptest.NewRequest(http.MethodGet, "/lookup/city/x", nil)
	r.Header.Set("Origin", "https://example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
