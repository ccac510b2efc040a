package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
	"glpidesk/internal/mercadopago"
)

// BillingClient builds a payment-provider client from the stored system
// config. The zero-credential client reports itself disabled.
func BillingClient(gdb *gorm.DB) *mercadopago.Client {
	var cfg dbpkg.SystemConfig
	if err := gdb.Limit(1).Find(&cfg).Error; err != nil || !cfg.MercadoPagoEnabled {
		return mercadopago.New("", "")
	}
	return mercadopago.New(cfg.MercadoPagoAccessToken, cfg.MercadoPagoPublicKey)
}

// AdminStats returns installation-wide dashboard counters.
func AdminStats(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var total, active, users, plans int64
		if err := gdb.Model(&dbpkg.Tenant{}).Count(&total).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		gdb.Model(&dbpkg.Tenant{}).Where("ativo = ?", true).Count(&active)
		gdb.Model(&dbpkg.TenantUser{}).Count(&users)
		gdb.Model(&dbpkg.Plan{}).Where("ativo = ?", true).Count(&plans)

		writeJSON(ctx, fasthttp.StatusOK, map[string]int64{
			"total_tenants":  total,
			"active_tenants": active,
			"total_users":    users,
			"active_plans":   plans,
		})
	}
}

// GetSystemConfig returns the singleton system config with the access
// token redacted.
func GetSystemConfig(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		cfg, err := dbpkg.EnsureSystemConfig(gdb)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		if cfg.MercadoPagoAccessToken != "" {
			cfg.MercadoPagoAccessToken = "********"
		}
		writeJSON(ctx, fasthttp.StatusOK, cfg)
	}
}

type updateSystemConfigRequest struct {
	MercadoPagoEnabled     *bool   `json:"mercadopago_enabled"`
	MercadoPagoAccessToken *string `json:"mercadopago_access_token"`
	MercadoPagoPublicKey   *string `json:"mercadopago_public_key"`
}

func UpdateSystemConfig(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		cfg, err := dbpkg.EnsureSystemConfig(gdb)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}

		var req updateSystemConfigRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		if req.MercadoPagoEnabled != nil {
			cfg.MercadoPagoEnabled = *req.MercadoPagoEnabled
		}
		if req.MercadoPagoAccessToken != nil && *req.MercadoPagoAccessToken != "********" {
			cfg.MercadoPagoAccessToken = *req.MercadoPagoAccessToken
		}
		if req.MercadoPagoPublicKey != nil {
			cfg.MercadoPagoPublicKey = *req.MercadoPagoPublicKey
		}

		if err := gdb.Save(cfg).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao salvar configurações")
			return
		}
		writeMessage(ctx, fasthttp.StatusOK, "Configurações do sistema atualizadas")
	}
}

// TestMercadoPago checks the stored payment-provider credentials against a
// cheap authenticated endpoint.
func TestMercadoPago(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		mp := BillingClient(gdb)
		if !mp.Enabled() {
			writeMessage(ctx, fasthttp.StatusBadRequest, "Mercado Pago não configurado")
			return
		}
		if err := mp.Ping(); err != nil {
			writeJSON(ctx, fasthttp.StatusBadGateway, map[string]string{
				"message": "Falha na conexão com o Mercado Pago",
				"error":   err.Error(),
			})
			return
		}
		writeMessage(ctx, fasthttp.StatusOK, "Conexão com o Mercado Pago OK")
	}
}
