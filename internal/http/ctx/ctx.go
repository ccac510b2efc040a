package ctx

import (
	"github.com/valyala/fasthttp"
)

const (
	ClaimsKey = "claims"
	TenantKey = "tenant"
)

// SetClaims stores the authenticated token claims on the request.
func SetClaims(ctx *fasthttp.RequestCtx, claims any) {
	ctx.SetUserValue(ClaimsKey, claims)
}

func ClaimsFromCtx(ctx *fasthttp.RequestCtx) (any, bool) {
	v := ctx.UserValue(ClaimsKey)
	if v == nil {
		return nil, false
	}
	return v, true
}

// SetTenant stores the resolved tenant record on the request so handlers
// behind the same middleware chain don't re-query it.
func SetTenant(ctx *fasthttp.RequestCtx, tenant any) {
	ctx.SetUserValue(TenantKey, tenant)
}

func TenantFromCtx(ctx *fasthttp.RequestCtx) (any, bool) {
	v := ctx.UserValue(TenantKey)
	if v == nil {
		return nil, false
	}
	return v, true
}
