package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
	"glpidesk/internal/glpi"
	httpctx "glpidesk/internal/http/ctx"
	"glpidesk/internal/http/middleware"
)

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("encoding error")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeMessage(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"message": msg})
}

// writeUpstreamError maps the GLPI error taxonomy to HTTP statuses:
// rejected session init is a bad gateway, everything else from upstream is
// a 500 with the original payload attached for diagnostics.
func writeUpstreamError(ctx *fasthttp.RequestCtx, err error) {
	var authErr *glpi.AuthError
	if errors.As(err, &authErr) {
		writeJSON(ctx, fasthttp.StatusBadGateway, map[string]string{
			"message": "falha na autenticação com o GLPI",
			"error":   authErr.Error(),
		})
		return
	}

	var upErr *glpi.UpstreamError
	if errors.As(err, &upErr) {
		writeJSON(ctx, fasthttp.StatusInternalServerError, map[string]string{
			"error":    upErr.Error(),
			"upstream": upErr.Body,
		})
		return
	}

	writeJSON(ctx, fasthttp.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// pathID parses a numeric path parameter, sending 400 on failure.
func pathID(ctx *fasthttp.RequestCtx, name string) (uint, bool) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		writeMessage(ctx, fasthttp.StatusBadRequest, "parâmetro "+name+" inválido")
		return 0, false
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		writeMessage(ctx, fasthttp.StatusBadRequest, "parâmetro "+name+" inválido")
		return 0, false
	}
	return uint(id), true
}

// loadTenant resolves the tenant_id path parameter. A missing tenant is a
// 404 and no upstream call is ever attempted for it.
func loadTenant(gdb *gorm.DB, ctx *fasthttp.RequestCtx) (*dbpkg.Tenant, bool) {
	id, ok := pathID(ctx, "tenant_id")
	if !ok {
		return nil, false
	}
	tenant, err := dbpkg.FindTenant(gdb, id)
	if err != nil {
		if errors.Is(err, dbpkg.ErrTenantNotFound) {
			writeMessage(ctx, fasthttp.StatusNotFound, "Tenant não encontrado")
			return nil, false
		}
		writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
		return nil, false
	}
	return tenant, true
}

// mustClaims returns the authenticated session claims, or sends 401.
func mustClaims(ctx *fasthttp.RequestCtx) (*middleware.Claims, bool) {
	v, ok := httpctx.ClaimsFromCtx(ctx)
	if !ok {
		writeMessage(ctx, fasthttp.StatusUnauthorized, "não autenticado")
		return nil, false
	}
	claims, ok := v.(*middleware.Claims)
	if !ok || claims == nil {
		writeMessage(ctx, fasthttp.StatusUnauthorized, "não autenticado")
		return nil, false
	}
	return claims, true
}

// tenantClient builds a GLPI client from the tenant's stored credentials.
func tenantClient(tenant *dbpkg.Tenant) *glpi.Client {
	return glpi.NewClient(tenant.Glpi.URL, tenant.Glpi.AppToken, tenant.Slug)
}
