package middleware

import (
	"bytes"
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"

	"glpidesk/internal/config"
	httpctx "glpidesk/internal/http/ctx"
)

// Claims are the session claims issued to tenant users at login.
type Claims struct {
	TenantID uint   `json:"tenant_id"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignClaims issues a signed session token for a tenant user.
func SignClaims(cfg *config.Config, tenantID, userID uint, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func bearerToken(ctx *fasthttp.RequestCtx) string {
	auth := ctx.Request.Header.Peek("Authorization")
	const prefix = "Bearer "
	if !bytes.HasPrefix(auth, []byte(prefix)) {
		return ""
	}
	return strings.TrimSpace(string(auth[len(prefix):]))
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"message":` + strconv.Quote(msg) + `}`)
}

// TenantAuth validates the bearer JWT issued at login and rejects tokens
// whose tenant does not match the tenant_id path parameter.
func TenantAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := bearerToken(ctx)
			if token == "" {
				unauthorized(ctx, "token de acesso ausente")
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !parsed.Valid {
				unauthorized(ctx, "token inválido ou expirado")
				return
			}

			if idVal, ok := ctx.UserValue("tenant_id").(string); ok {
				if id, err := strconv.ParseUint(idVal, 10, 32); err == nil && uint(id) != claims.TenantID {
					ctx.SetStatusCode(fasthttp.StatusForbidden)
					ctx.SetContentType("application/json")
					ctx.SetBodyString(`{"message":"acesso negado a este tenant"}`)
					return
				}
			}

			httpctx.SetClaims(ctx, claims)
			next(ctx)
		}
	}
}

// AdminAuth guards the /admin surface with the static admin API token from
// config. An empty configured token disables the surface entirely.
func AdminAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if cfg.AdminAPIToken == "" {
				unauthorized(ctx, "admin API is disabled")
				return
			}
			token := bearerToken(ctx)
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminAPIToken)) != 1 {
				unauthorized(ctx, "invalid admin token")
				return
			}
			next(ctx)
		}
	}
}
