package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, remote, subject string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if subject != "" {
		req = req.WithContext(httpx.WithSubject(req.Context(), subject))
	}
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, httpx.IPKeyExtractor)

	t.Run("combines subject and ip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(httpx.WithSubject(req.Context(), "sess-1"))
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "sess-1:192.168.1.1", extract(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", extract(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		})(okHandler())

		for i := range 3 {
			rec := serve(h, "192.168.1.1:12345", "")
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := serve(h, "192.168.1.1:12345", "")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		})(okHandler())

		require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1", "").Code)
		require.Equal(t, http.StatusTooManyRequests, serve(h, "192.168.1.1:1", "").Code)
		require.Equal(t, http.StatusOK, serve(h, "192.168.1.2:1", "").Code)
	})

	t.Run("sessions behind one address get their own bucket", func(t *testing.T) {
		h := httpx.RateLimitBySession(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		})(okHandler())

		require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1", "sess-a").Code)
		require.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1:1", "sess-a").Code)
		require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1", "sess-b").Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, "", "").Code)
		}
	})
}

func TestRateLimitHeaders(t *testing.T) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	})(okHandler())

	require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:12345", "").Code)

	rec := serve(h, "192.168.1.1:12345", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitProfiles(t *testing.T) {
	limits := httpx.LoadRateLimits()

	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   limits.Strict,
		"moderate": limits.Moderate,
		"lenient":  limits.Lenient,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("no env uses defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides all parameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		got := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250}, got)
	})

	t.Run("invalid and zero values use defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000,
		Window:            time.Minute,
		Burst:             1000,
	})(okHandler())

	for i := 0; b.Loop(); i++ {
		serve(h, fmt.Sprintf("192.168.%d.%d:12345", i%255, (i/255)%255), "")
	}
}
