package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/spleiner/slussen/internal/logging"
)

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.RemoteAddr = ip + ":54321"
	return req
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCompressionMiddleware(t *testing.T) {
	largeResponse := strings.Repeat(`{"line": "409"}`, 1000)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(largeResponse))
	})

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, largeResponse, string(decompressed))
		assert.Less(t, recorder.Body.Len(), len(largeResponse))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		recorder := doRequest(CompressionMiddleware(testHandler), http.MethodGet, "/api/board")

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})

	t.Run("leaves small responses alone", func(t *testing.T) {
		small := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":200}`))
		})
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(small).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"code":200}`, recorder.Body.String())
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("sets headers", func(t *testing.T) {
		rec := doRequest(securityHeaders(okHandler), http.MethodGet, "/api/board")

		headers := rec.Header()
		assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
		assert.Equal(t, "no-store", headers.Get("Cache-Control"))
		assert.Empty(t, headers.Get("Access-Control-Allow-Origin"))
	})

	t.Run("adds CORS headers for cross origin requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set("Origin", "https://board.example.com")
		rec := httptest.NewRecorder()

		securityHeaders(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("answers preflight without calling the handler", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called for OPTIONS request")
		})
		rec := doRequest(securityHeaders(handler), http.MethodOptions, "/api/refresh")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over the limit", func(t *testing.T) {
		limited := NewRateLimitMiddleware(3, time.Second)(okHandler)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
			assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
		}

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	})

	t.Run("limits each client separately", func(t *testing.T) {
		limited := NewRateLimitMiddleware(1, time.Second)(okHandler)

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.2"))
		assert.Equal(t, http.StatusOK, rec.Code, "another client is unaffected")
	})

	t.Run("refills over time", func(t *testing.T) {
		limited := NewRateLimitMiddleware(1, 100*time.Millisecond)(okHandler)

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		time.Sleep(150 * time.Millisecond)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		limited := NewRateLimitMiddleware(0, time.Second)(okHandler)
		for i := 0; i < 50; i++ {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("10.0.0.1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("concurrent requests respect the burst", func(t *testing.T) {
		limited := NewRateLimitMiddleware(5, time.Minute)(okHandler)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				limited.ServeHTTP(rec, requestFrom("10.0.0.9"))
				if rec.Code == http.StatusOK {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 5, allowed)
	})
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(5, time.Second)
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	rl.limiters["10.0.0.1"].lastSeen = time.Now().Add(-10 * time.Minute)

	rl.evictIdle(time.Now())

	assert.NotContains(t, rl.limiters, "10.0.0.1")
	assert.Contains(t, rl.limiters, "10.0.0.2")
}

func TestUnlimitedRateLimiterStartsNoCleanup(t *testing.T) {
	rl := newRateLimiter(0, time.Second)

	assert.Equal(t, rate.Inf, rl.rateLimit)
	assert.Nil(t, rl.cleanupTick)
	assert.Nil(t, rl.done)
	assert.NotPanics(t, rl.Stop)

	handler := rl.rateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/board", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, rl.limiters)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Same(t, logger, logging.FromContext(r.Context()))
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh?key=secret", nil)
	req.Header.Set("User-Agent", "board-shell/1.0")
	req.RemoteAddr = "192.0.2.7:4444"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	output := buf.String()
	assert.Contains(t, output, `"msg":"http_request"`)
	assert.Contains(t, output, `"method":"POST"`)
	assert.Contains(t, output, `"path":"/api/refresh"`)
	assert.Contains(t, output, `"status":502`)
	assert.Contains(t, output, `"client_ip":"192.0.2.7"`)
	assert.Contains(t, output, `"user_agent":"board-shell/1.0"`)
	assert.NotContains(t, output, "secret")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "not-an-address"
	assert.Equal(t, "not-an-address", clientIP(req))
}
