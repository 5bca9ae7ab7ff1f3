package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedEngine(counter Counter, max int, allow AllowFunc) *gin.Engine {
	r := gin.New()
	r.Use(RealIP(nil))
	r.Use(RateLimit(counter, max, time.Minute, KeyByIP(), allow, nil))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine, method, ip string) *httptest.ResponseRecorder {
	return hitForwarded(r, method, ip, "")
}

func hitForwarded(r *gin.Engine, method, ip, forwarded string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := limitedEngine(NewRedisCounter(rdb), 2, nil)

	w := hit(r, http.MethodGet, "203.0.113.7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "203.0.113.7").Code)

	w = hit(r, http.MethodGet, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")

	// other clients have their own window
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "203.0.113.8").Code)

	// the window resets
	mr.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "203.0.113.7").Code)
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := limitedEngine(NewRedisCounter(rdb), 1, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "203.0.113.7").Code)
	}
}

func TestRateLimit_Memory(t *testing.T) {
	counter := NewMemoryCounter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	counter.now = func() time.Time { return now }
	r := limitedEngine(counter, 1, nil)

	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodGet, "198.51.100.1").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
}

func TestRateLimit_SkipsPreflightAndAllowed(t *testing.T) {
	counter := NewMemoryCounter()
	r := limitedEngine(counter, 1, AllowPrivateIP())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hit(r, http.MethodOptions, "198.51.100.1").Code)
		assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "10.0.0.5").Code)
	}
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodGet, "198.51.100.1").Code)
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("unavailable")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := limitedEngine(nil, 1, nil)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)

	r = limitedEngine(brokenCounter{}, 1, nil)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, http.MethodGet, "198.51.100.1").Code)
}

func TestMemoryCounter_Sweeps(t *testing.T) {
	counter := NewMemoryCounter()
	now := time.Now()
	counter.now = func() time.Time { return now }

	_, _, err := counter.Incr(context.Background(), "old", time.Second)
	require.NoError(t, err)
	now = now.Add(2 * time.Second)
	for i := 0; i < 1024; i++ {
		_, _, err = counter.Incr(context.Background(), "new", time.Minute)
		require.NoError(t, err)
	}
	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.NotContains(t, counter.windows, "old")
}

func TestRateLimit_ForwardedHeadersFromUntrustedPeer(t *testing.T) {
	r := limitedEngine(NewMemoryCounter(), 2, AllowPrivateIP())

	// rotating forwarded values from one peer share that peer's window
	assert.Equal(t, http.StatusOK, hitForwarded(r, http.MethodGet, "198.51.100.1", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, hitForwarded(r, http.MethodGet, "198.51.100.1", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitForwarded(r, http.MethodGet, "198.51.100.1", "203.0.113.3").Code)

	// a forged loopback address does not earn the private-caller exemption
	assert.Equal(t, http.StatusTooManyRequests, hitForwarded(r, http.MethodGet, "198.51.100.1", "127.0.0.1").Code)
}

func TestRateLimit_ForwardedHeadersFromTrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.1"})
	require.NoError(t, err)
	r := gin.New()
	r.Use(RealIP(trusted))
	r.Use(RateLimit(NewMemoryCounter(), 1, time.Minute, KeyByIP(), nil, nil))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, hitForwarded(r, http.MethodGet, "10.0.0.1", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, hitForwarded(r, http.MethodGet, "10.0.0.1", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitForwarded(r, http.MethodGet, "10.0.0.1", "203.0.113.1").Code)
}

func TestAllowPrivateIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	c.Set("real_ip", "8.8.8.8")
	assert.False(t, AllowPrivateIP()(c))
	c.Set("real_ip", "10.1.2.3")
	assert.True(t, AllowPrivateIP()(c))
	c.Set("real_ip", "not-an-ip")
	assert.False(t, AllowPrivateIP()(c))
}
