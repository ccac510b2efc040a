package handlers

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
	"glpidesk/internal/mercadopago"
)

// ListTenants returns every tenant with credentials redacted.
func ListTenants(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var tenants []dbpkg.Tenant
		if err := gdb.Order("id").Find(&tenants).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		out := make([]dbpkg.Tenant, len(tenants))
		for i, t := range tenants {
			out[i] = t.Redacted()
		}
		writeJSON(ctx, fasthttp.StatusOK, out)
	}
}

type createTenantRequest struct {
	Nome             string `json:"nome"`
	Slug             string `json:"slug"`
	Logo             string `json:"logo"`
	PlanID           *uint  `json:"plan_id"`
	GlpiURL          string `json:"glpi_url"`
	GlpiAppToken     string `json:"glpi_app_token"`
	GlpiUserLogin    string `json:"glpi_user_login"`
	GlpiUserPassword string `json:"glpi_user_password"`
	AdminNome        string `json:"admin_nome"`
	AdminEmail       string `json:"admin_email"`
	AdminPassword    string `json:"admin_password"`
}

// CreateTenant provisions a tenant plus its first admin user in one
// transaction. When a plan and the payment provider are configured, a
// pending subscription is opened for the admin; a provider failure does not
// roll back the tenant.
func CreateTenant(gdb *gorm.DB, billing func(*gorm.DB) *mercadopago.Client) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req createTenantRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil ||
			req.Nome == "" || req.Slug == "" || req.GlpiURL == "" ||
			req.GlpiAppToken == "" || req.GlpiUserLogin == "" || req.GlpiUserPassword == "" ||
			req.AdminNome == "" || req.AdminEmail == "" || req.AdminPassword == "" {
			writeMessage(ctx, fasthttp.StatusBadRequest, "dados do tenant incompletos")
			return
		}

		slug := strings.ToLower(req.Slug)
		var count int64
		if err := gdb.Model(&dbpkg.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		if count > 0 {
			writeMessage(ctx, fasthttp.StatusBadRequest, "Empresa com este identificador já existe")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao processar senha")
			return
		}

		tenant := &dbpkg.Tenant{
			Nome:   req.Nome,
			Slug:   slug,
			Logo:   req.Logo,
			Ativo:  true,
			PlanID: req.PlanID,
			Glpi: dbpkg.GlpiConfig{
				URL:          req.GlpiURL,
				AppToken:     req.GlpiAppToken,
				UserLogin:    req.GlpiUserLogin,
				UserPassword: req.GlpiUserPassword,
			},
			Automation: dbpkg.AutomationConfig{
				StatusFilter:          "10",
				AutoAssignEnabled:     true,
				AutoCategorizeEnabled: true,
			},
		}

		err = gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(tenant).Error; err != nil {
				return err
			}
			admin := &dbpkg.TenantUser{
				TenantID:     tenant.ID,
				Nome:         req.AdminNome,
				Email:        strings.ToLower(req.AdminEmail),
				PasswordHash: string(hash),
				Role:         "admin",
				Ativo:        true,
			}
			return tx.Create(admin).Error
		})
		if err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "erro ao criar tenant")
			return
		}

		if req.PlanID != nil {
			provisionSubscription(gdb, billing, tenant, *req.PlanID, req.AdminEmail)
		}

		writeJSON(ctx, fasthttp.StatusCreated, tenant.Redacted())
	}
}

// provisionSubscription opens a pending preapproval for a newly created
// tenant. Best-effort: billing problems are logged, never fatal.
func provisionSubscription(gdb *gorm.DB, billing func(*gorm.DB) *mercadopago.Client, tenant *dbpkg.Tenant, planID uint, payerEmail string) {
	mp := billing(gdb)
	if !mp.Enabled() {
		return
	}

	var plan dbpkg.Plan
	if err := gdb.First(&plan, planID).Error; err != nil {
		log.Printf("billing: plan %d not found for tenant %s", planID, tenant.Slug)
		return
	}

	result, err := mp.CreateSubscription("Assinatura "+plan.Nome, plan.Preco, payerEmail, "")
	if err != nil {
		log.Printf("billing: subscription for tenant %s failed: %v", tenant.Slug, err)
		return
	}

	var sub struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(result, &sub); err != nil || sub.ID == "" {
		log.Printf("billing: unreadable subscription response for tenant %s", tenant.Slug)
		return
	}
	if err := gdb.Model(tenant).Update("subscription_id", sub.ID).Error; err != nil {
		log.Printf("billing: could not store subscription id for tenant %s: %v", tenant.Slug, err)
	}
}

type updateTenantRequest struct {
	Nome   *string `json:"nome"`
	Logo   *string `json:"logo"`
	PlanID *uint   `json:"plan_id"`
}

// UpdateTenant edits a tenant's display fields and plan. GLPI credentials
// change through the tenant config endpoint, not here.
func UpdateTenant(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}
		tenant, err := dbpkg.FindTenant(gdb, id)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "Tenant não encontrado")
			return
		}

		var req updateTenantRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		if req.Nome != nil {
			tenant.Nome = *req.Nome
		}
		if req.Logo != nil {
			tenant.Logo = *req.Logo
		}
		if req.PlanID != nil {
			tenant.PlanID = req.PlanID
		}

		if err := gdb.Save(tenant).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao salvar tenant")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, tenant.Redacted())
	}
}

// DeleteTenant removes a tenant and its users.
func DeleteTenant(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}
		if _, err := dbpkg.FindTenant(gdb, id); err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "Tenant não encontrado")
			return
		}

		err := gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("tenant_id = ?", id).Delete(&dbpkg.TenantUser{}).Error; err != nil {
				return err
			}
			return tx.Delete(&dbpkg.Tenant{}, id).Error
		})
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao remover tenant")
			return
		}
		writeMessage(ctx, fasthttp.StatusOK, "Tenant removido com sucesso")
	}
}

// SuspendTenant deactivates a tenant and cancels its subscription when the
// payment provider is configured.
func SuspendTenant(gdb *gorm.DB, billing func(*gorm.DB) *mercadopago.Client) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}
		tenant, err := dbpkg.FindTenant(gdb, id)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "Tenant não encontrado")
			return
		}

		if err := gdb.Model(tenant).Update("ativo", false).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao suspender tenant")
			return
		}

		if tenant.SubscriptionID != "" {
			mp := billing(gdb)
			if mp.Enabled() {
				if _, err := mp.CancelSubscription(tenant.SubscriptionID); err != nil {
					log.Printf("billing: cancel for tenant %s failed: %v", tenant.Slug, err)
				}
			}
		}

		writeMessage(ctx, fasthttp.StatusOK, "Tenant suspenso com sucesso")
	}
}

// ReactivateTenant re-enables a suspended tenant.
func ReactivateTenant(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}
		tenant, err := dbpkg.FindTenant(gdb, id)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "Tenant não encontrado")
			return
		}
		if err := gdb.Model(tenant).Update("ativo", true).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao reativar tenant")
			return
		}
		writeMessage(ctx, fasthttp.StatusOK, "Tenant reativado com sucesso")
	}
}
