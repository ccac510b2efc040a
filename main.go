package main

import (
	"log"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"glpidesk/internal/config"
	"glpidesk/internal/db"
	"glpidesk/internal/glpi"
	"glpidesk/internal/http/handlers"
	appmw "glpidesk/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if _, err := db.EnsureSystemConfig(gdb); err != nil {
		log.Fatalf("failed to ensure system config: %v", err)
	}

	if cfg.AdminAPIToken == "" {
		log.Printf("warning: APP_ADMIN_API_TOKEN is empty, the /admin surface is disabled")
	}

	glpi.InitMetrics()

	db.StartStatsWorker(gdb, time.Duration(cfg.StatsRefreshMinutes)*time.Minute, handlers.RefreshTenantStats)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	tenantAuth := appmw.TenantAuth(cfg)
	adminAuth := appmw.AdminAuth(cfg)

	// Tenant user authentication and self-service.
	r.POST("/tenant/auth/login", handlers.Login(gdb, cfg))
	r.POST("/tenant/auth/user", tenantAuth(handlers.CreateTenantUser(gdb)))
	r.PUT("/tenant/auth/password", tenantAuth(handlers.ChangePassword(gdb)))

	// Tenant configuration.
	r.GET("/tenant/{tenant_id}/config", tenantAuth(handlers.GetTenantConfig(gdb)))
	r.PUT("/tenant/{tenant_id}/config", tenantAuth(handlers.UpdateTenantConfig(gdb)))

	// Ticket pipeline.
	r.GET("/tenant/{tenant_id}/tickets", tenantAuth(handlers.GetTickets(gdb)))
	r.POST("/tenant/{tenant_id}/tickets/assign", tenantAuth(handlers.AssignTicket(gdb)))
	r.POST("/tenant/{tenant_id}/tickets/category", tenantAuth(handlers.AssignCategory(gdb)))
	r.POST("/tenant/{tenant_id}/tickets/auto-assign", tenantAuth(handlers.AutoAssignTickets(gdb)))
	r.GET("/tenant/{tenant_id}/stats", tenantAuth(handlers.DailyStatsHandler(gdb)))
	r.GET("/tenant/{tenant_id}/metrics", tenantAuth(handlers.TenantMetricsHandler(gdb)))

	// System-scoped GLPI directory proxies.
	r.GET("/glpi/tecnicos", tenantAuth(handlers.GlpiTechnicians(cfg)))
	r.GET("/glpi/categorias", tenantAuth(handlers.GlpiCategories(cfg)))
	r.GET("/glpi/entidades", tenantAuth(handlers.GlpiEntities(cfg)))

	// Installation admin surface.
	r.GET("/admin/stats", adminAuth(handlers.AdminStats(gdb)))
	r.GET("/admin/tenants", adminAuth(handlers.ListTenants(gdb)))
	r.POST("/admin/tenants", adminAuth(handlers.CreateTenant(gdb, handlers.BillingClient)))
	r.PUT("/admin/tenants/{id}", adminAuth(handlers.UpdateTenant(gdb)))
	r.DELETE("/admin/tenants/{id}", adminAuth(handlers.DeleteTenant(gdb)))
	r.PUT("/admin/tenants/{id}/suspend", adminAuth(handlers.SuspendTenant(gdb, handlers.BillingClient)))
	r.PUT("/admin/tenants/{id}/reactivate", adminAuth(handlers.ReactivateTenant(gdb)))
	r.GET("/admin/plans", adminAuth(handlers.ListPlans(gdb)))
	r.POST("/admin/plans", adminAuth(handlers.CreatePlan(gdb)))
	r.PUT("/admin/plans/{id}", adminAuth(handlers.UpdatePlan(gdb)))
	r.DELETE("/admin/plans/{id}", adminAuth(handlers.DeletePlan(gdb)))
	r.GET("/admin/system-config", adminAuth(handlers.GetSystemConfig(gdb)))
	r.PUT("/admin/system-config", adminAuth(handlers.UpdateSystemConfig(gdb)))
	r.POST("/admin/test-mercadopago", adminAuth(handlers.TestMercadoPago(gdb)))

	log.Printf("glpidesk listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, r.Handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
