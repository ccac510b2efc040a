package handlers

import (
	"github.com/valyala/fasthttp"

	"glpidesk/internal/config"
	"glpidesk/internal/glpi"
)

// systemClient builds the GLPI client for the shared, system-scoped
// directory queries (technicians, categories, entities).
func systemClient(cfg *config.Config) *glpi.Client {
	return glpi.NewClient(cfg.GlpiURL, cfg.GlpiAppToken, "system")
}

func systemSession(cfg *config.Config) (*glpi.Client, string, error) {
	client := systemClient(cfg)
	session, err := client.InitSession(cfg.GlpiUserLogin, cfg.GlpiUserPassword)
	return client, session, err
}

// GlpiTechnicians proxies the technician directory.
func GlpiTechnicians(cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		client, session, err := systemSession(cfg)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		technicians, err := client.Technicians(session)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, technicians)
	}
}

// GlpiCategories proxies the ITIL category tree unchanged.
func GlpiCategories(cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		client, session, err := systemSession(cfg)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		categories, err := client.Categories(session)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("application/json")
		ctx.SetBody(categories)
	}
}

// GlpiEntities proxies the entity list.
func GlpiEntities(cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		client, session, err := systemSession(cfg)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		entities, err := client.Entities(session)
		if err != nil {
			writeUpstreamError(ctx, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, entities)
	}
}
