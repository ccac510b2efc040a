package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"glpidesk/internal/config"
	httpctx "glpidesk/internal/http/ctx"
)

func newAuthCtx(token string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI("http://test/tenant/3/tickets")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func TestTenantAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	token, err := SignClaims(cfg, 3, 7, "admin", time.Hour)
	require.NoError(t, err)

	called := false
	handler := TenantAuth(cfg)(func(ctx *fasthttp.RequestCtx) {
		called = true
		v, ok := httpctx.ClaimsFromCtx(ctx)
		require.True(t, ok)
		claims := v.(*Claims)
		assert.Equal(t, uint(3), claims.TenantID)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	ctx := newAuthCtx(token)
	ctx.SetUserValue("tenant_id", "3")
	handler(ctx)

	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestTenantAuthMissingToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := TenantAuth(cfg)(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run without a token")
	})

	ctx := newAuthCtx("")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestTenantAuthWrongSecret(t *testing.T) {
	token, err := SignClaims(&config.Config{JWTSecret: "other"}, 3, 7, "viewer", time.Hour)
	require.NoError(t, err)

	handler := TenantAuth(&config.Config{JWTSecret: "test-secret"})(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run with a forged token")
	})

	ctx := newAuthCtx(token)
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestTenantAuthExpiredToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	token, err := SignClaims(cfg, 3, 7, "viewer", -time.Minute)
	require.NoError(t, err)

	handler := TenantAuth(cfg)(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run with an expired token")
	})

	ctx := newAuthCtx(token)
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestTenantAuthCrossTenant(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	token, err := SignClaims(cfg, 3, 7, "admin", time.Hour)
	require.NoError(t, err)

	handler := TenantAuth(cfg)(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run for another tenant's path")
	})

	ctx := newAuthCtx(token)
	ctx.SetUserValue("tenant_id", "9")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
}

func TestAdminAuth(t *testing.T) {
	cfg := &config.Config{AdminAPIToken: "admin-token"}

	called := false
	handler := AdminAuth(cfg)(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := newAuthCtx("admin-token")
	handler(ctx)
	assert.True(t, called)

	ctx = newAuthCtx("wrong")
	called = false
	handler(ctx)
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestAdminAuthDisabledWhenUnset(t *testing.T) {
	handler := AdminAuth(&config.Config{})(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("admin surface must stay closed without a configured token")
	})

	ctx := newAuthCtx("anything")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}
