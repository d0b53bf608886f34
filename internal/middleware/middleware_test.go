package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	valid, err := utils.NewAccessToken("secret", 42, "alice", 5)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other", 42, "alice", 5)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken("secret", 42, "alice", -5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid.Token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign.Token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired.Token, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var seen interface{}
			e.GET("/me", func(c echo.Context) error {
				seen = c.Get(CtxUserID)
				return c.NoContent(http.StatusOK)
			}, JWTAuth("secret"))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, uint64(42), seen)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   interface{}
		want uint64
		ok   bool
	}{
		{float64(7), 7, true},
		{"9", 9, true},
		{float64(0), 0, false},
		{float64(1.5), 0, false},
		{"abc", 0, false},
		{nil, 0, false},
	} {
		got, ok := subject(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestParseBucketResult(t *testing.T) {
	t.Parallel()

	res, ok := parseBucketResult([]interface{}{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	assert.False(t, res.allowed)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	res, ok = parseBucketResult([]interface{}{int64(1), "12", int64(0)})
	require.True(t, ok)
	assert.True(t, res.allowed)
	assert.Equal(t, int64(12), res.remaining)

	_, ok = parseBucketResult("nope")
	assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/showtimes/1/tickets", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/showtimes/:id/tickets")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:POST /v1/showtimes/:id/tickets", buildRateKey(cfg, c))

	c.Set(CtxUserID, uint64(5))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:5", buildRateKey(cfg, c))
}

func TestOptionalJWT(t *testing.T) {
	t.Parallel()

	valid, err := utils.NewAccessToken("secret", 42, "alice", 5)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other", 42, "alice", 5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer " + valid.Token, "rl:user:42"},
		{"missing", "", "rl:user:anon"},
		{"not bearer", "Basic abc", "rl:user:anon"},
		{"wrong secret", "Bearer " + foreign.Token, "rl:user:anon"},
		{"garbage", "Bearer x.y.z", "rl:user:anon"},
	}
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var key string
			g := e.Group("/v1", OptionalJWT("secret"), func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					key = buildRateKey(cfg, c)
					return next(c)
				}
			})
			g.GET("/movies", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestNewTokenBucket_Disabled(t *testing.T) {
	t.Parallel()

	client, _ := redismock.NewClientMock()
	for _, mw := range []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, client),
	} {
		e := echo.New()
		e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, mw)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", KeyStrategy: "route_query"}
}

func TestCacheKeyIncludesPathParams(t *testing.T) {
	t.Parallel()

	e := echo.New()
	key := func(id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies/"+id, nil), httptest.NewRecorder())
		c.SetPath("/v1/movies/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKeyFrom(cacheConfig(), c)
	}
	assert.NotEqual(t, key("1"), key("2"))
	assert.Equal(t, key("1"), key("1"))
}

func TestNewRedisCache_Hit(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	cfg := cacheConfig()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies", nil), httptest.NewRecorder())
	c.SetPath("/v1/movies")
	payload, err := encodePayload(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte(`["cached"]`))
	require.NoError(t, err)
	mock.ExpectGet(cacheKeyFrom(cfg, c)).SetVal(string(payload))

	called := false
	e.GET("/v1/movies", func(c echo.Context) error {
		called = true
		return c.JSON(http.StatusOK, []string{"fresh"})
	}, NewRedisCache(cfg, client))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))

	assert.False(t, called)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `["cached"]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisCache_Miss(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	cfg := cacheConfig()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies", nil), httptest.NewRecorder())
	c.SetPath("/v1/movies")
	mock.ExpectGet(cacheKeyFrom(cfg, c)).RedisNil()

	e.GET("/v1/movies", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{"fresh"})
	}, NewRedisCache(cfg, client))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `["fresh"]`, rec.Body.String())
}
