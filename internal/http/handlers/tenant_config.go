package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
)

// GetTenantConfig returns the tenant's GLPI and automation configuration
// with session-minting credentials redacted.
func GetTenantConfig(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		redacted := tenant.Redacted()
		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"glpi_config":       redacted.Glpi,
			"automation_config": redacted.Automation,
			"assign_rules":      redacted.AssignRules,
		})
	}
}

type updateTenantConfigRequest struct {
	Glpi        *dbpkg.GlpiConfig       `json:"glpi_config"`
	Automation  *dbpkg.AutomationConfig `json:"automation_config"`
	AssignRules map[string]any          `json:"assign_rules"`
}

// UpdateTenantConfig updates the tenant's GLPI credentials and automation
// settings. Only tenant admins reach this handler (enforced in routing).
// Omitted sections are left untouched; blank credential fields inside a
// provided GLPI section keep their stored values so clients can echo back
// redacted reads.
func UpdateTenantConfig(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		if claims.Role != "admin" {
			writeMessage(ctx, fasthttp.StatusForbidden, "apenas administradores podem alterar configurações")
			return
		}

		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		var req updateTenantConfigRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		if req.Glpi != nil {
			if req.Glpi.URL != "" {
				tenant.Glpi.URL = req.Glpi.URL
			}
			if req.Glpi.AppToken != "" && req.Glpi.AppToken != "********" {
				tenant.Glpi.AppToken = req.Glpi.AppToken
			}
			if req.Glpi.UserLogin != "" {
				tenant.Glpi.UserLogin = req.Glpi.UserLogin
			}
			if req.Glpi.UserPassword != "" && req.Glpi.UserPassword != "********" {
				tenant.Glpi.UserPassword = req.Glpi.UserPassword
			}
		}
		if req.Automation != nil {
			tenant.Automation = *req.Automation
		}
		if req.AssignRules != nil {
			tenant.AssignRules = req.AssignRules
		}

		if err := gdb.Save(tenant).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao salvar configurações")
			return
		}

		writeMessage(ctx, fasthttp.StatusOK, "Configurações atualizadas com sucesso")
	}
}
