package handlers

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
	"glpidesk/internal/glpi"
)

// GetTickets fetches, sanitizes and merges the tenant's tickets across one
// search call per status value. The ?status= query overrides the tenant's
// configured filter.
func GetTickets(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		filter := string(ctx.QueryArgs().Peek("status"))
		if filter == "" {
			filter = tenant.Automation.StatusFilter
		}
		statuses := glpi.ParseStatusFilter(filter)

		client := tenantClient(tenant)
		session, err := client.InitSession(tenant.Glpi.UserLogin, tenant.Glpi.UserPassword)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		responses, err := client.FetchTickets(session, statuses)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		tickets := glpi.Normalize(responses)
		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"total":   len(tickets),
			"tickets": tickets,
		})
	}
}

type assignTicketRequest struct {
	TicketID int `json:"ticket_id"`
	UserID   int `json:"user_id"`
}

// AssignTicket links a technician to a ticket. At-most-once: an upstream
// failure surfaces directly, the write is never repeated.
func AssignTicket(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		var req assignTicketRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.TicketID == 0 || req.UserID == 0 {
			writeMessage(ctx, fasthttp.StatusBadRequest, "ticket_id e user_id são obrigatórios")
			return
		}

		client := tenantClient(tenant)
		session, err := client.InitSession(tenant.Glpi.UserLogin, tenant.Glpi.UserPassword)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		result, err := client.AssignTicket(session, req.TicketID, req.UserID)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"message": "Chamado atribuído com sucesso",
			"result":  result,
		})
	}
}

type assignCategoryRequest struct {
	TicketID   int `json:"ticket_id"`
	CategoryID int `json:"category_id"`
}

// AssignCategory sets a ticket's ITIL category.
func AssignCategory(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		var req assignCategoryRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.TicketID == 0 || req.CategoryID == 0 {
			writeMessage(ctx, fasthttp.StatusBadRequest, "ticket_id e category_id são obrigatórios")
			return
		}

		client := tenantClient(tenant)
		session, err := client.InitSession(tenant.Glpi.UserLogin, tenant.Glpi.UserPassword)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		result, err := client.AssignCategory(session, req.TicketID, req.CategoryID)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"message": "Categoria atribuída com sucesso",
			"result":  result,
		})
	}
}

// RefreshTenantStats fetches all dashboard statuses for a tenant and
// aggregates them into a fresh DailyStats snapshot. Shared by the stats
// handler and the background worker.
func RefreshTenantStats(tenant *dbpkg.Tenant) (dbpkg.DailyStats, error) {
	client := tenantClient(tenant)
	session, err := client.InitSession(tenant.Glpi.UserLogin, tenant.Glpi.UserPassword)
	if err != nil {
		return dbpkg.DailyStats{}, err
	}

	responses, err := client.FetchTickets(session, glpi.DefaultStatuses)
	if err != nil {
		return dbpkg.DailyStats{}, err
	}

	return glpi.Aggregate(glpi.Normalize(responses), time.Now()), nil
}

// DailyStatsHandler recomputes the tenant's stats snapshot from GLPI,
// persists it wholesale and returns it. The cache is only ever refreshed by
// this explicit trigger (and the background worker), never on other reads.
func DailyStatsHandler(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		stats, err := RefreshTenantStats(tenant)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		if err := dbpkg.SaveDailyStats(gdb, tenant.ID, stats); err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao salvar estatísticas")
			return
		}

		writeJSON(ctx, fasthttp.StatusOK, stats)
	}
}

// AutoAssignTickets runs one round-robin assignment pass over the tenant's
// available tickets.
func AutoAssignTickets(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, ok := loadTenant(gdb, ctx)
		if !ok {
			return
		}

		if !tenant.Automation.AutoAssignEnabled {
			writeMessage(ctx, fasthttp.StatusBadRequest, "Atribuição automática desabilitada")
			return
		}

		client := tenantClient(tenant)
		session, err := client.InitSession(tenant.Glpi.UserLogin, tenant.Glpi.UserPassword)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		assigned, err := client.AutoAssign(session)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}

		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"message":          "Atribuição automática executada",
			"total_atribuidos": len(assigned),
			"atribuidos":       assigned,
		})
	}
}
