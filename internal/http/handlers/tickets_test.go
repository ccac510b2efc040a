package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "glpidesk/internal/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(gdb))
	return gdb
}

func newRequestCtx(method, uri string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != nil {
		req.SetBody(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

// glpiStub is a minimal GLPI REST double: it mints sessions and serves
// per-status ticket searches from canned responses.
type glpiStub struct {
	*httptest.Server
	hits      atomic.Int64
	searched  []string
	byStatus  map[string]string
	failLogin bool
}

func newGlpiStub(t *testing.T, byStatus map[string]string) *glpiStub {
	t.Helper()
	stub := &glpiStub{byStatus: byStatus}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.hits.Add(1)
		switch r.URL.Path {
		case "/initSession":
			if stub.failLogin {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `["ERROR_GLPI_LOGIN","login rejected"]`)
				return
			}
			fmt.Fprint(w, `{"session_token":"stub-session"}`)
		case "/search/Ticket":
			status := r.URL.Query().Get("criteria[1][value]")
			stub.searched = append(stub.searched, status)
			body, ok := stub.byStatus[status]
			if !ok {
				body = `{"totalcount":0,"count":0,"data":{},"data_html":{}}`
			}
			fmt.Fprint(w, body)
		case "/search/User":
			fmt.Fprint(w, `{"data":[{"1":"csantos","2":31,"9":"Carlos"}]}`)
		default:
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				fmt.Fprint(w, `{"id":1}`)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(stub.Server.Close)
	return stub
}

func seedTenant(t *testing.T, gdb *gorm.DB, glpiURL string) *dbpkg.Tenant {
	t.Helper()
	tenant := &dbpkg.Tenant{
		Nome:  "Acme",
		Slug:  "acme",
		Ativo: true,
		Glpi: dbpkg.GlpiConfig{
			URL:          glpiURL,
			AppToken:     "app-token",
			UserLogin:    "api",
			UserPassword: "secret",
		},
		Automation: dbpkg.AutomationConfig{
			StatusFilter:      "10",
			AutoAssignEnabled: true,
		},
	}
	require.NoError(t, gdb.Create(tenant).Error)
	return tenant
}

func TestGetTicketsUnknownTenant(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodGet, "http://test/tenant/999/tickets", nil)
	ctx.SetUserValue("tenant_id", "999")
	GetTickets(gdb)(ctx)

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "Tenant não encontrado", decodeBody(t, ctx)["message"])
	assert.Zero(t, stub.hits.Load(), "unknown tenant must not touch the upstream")
}

func TestGetTickets(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, map[string]string{
		"1": `{"totalcount":2,"count":2,
			"data":{
				"20":{"2":20,"1":"Impressora parou","12":1},
				"11":{"2":11,"1":"Sem acesso à VPN","12":1}},
			"data_html":{
				"20":{"1":"<p>Impressora parou</p>","12":"Novo","4":"<a href='mailto:jo@acme.com'>João</a>"},
				"11":{"1":"Sem acesso à VPN","12":"Novo"}}}`,
		"2": `{"totalcount":1,"count":1,
			"data":{"30":{"2":30,"1":"Troca de monitor","12":2}},
			"data_html":{"30":{"12":"Atribuído","5":"Maria"}}}`,
	})
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodGet, "http://test/tenant/1/tickets", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	GetTickets(gdb)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, float64(3), body["total"])

	// One search per dashboard status, in ascending order.
	assert.Equal(t, []string{"1", "2", "3", "4"}, stub.searched)

	tickets := body["tickets"].([]any)
	require.Len(t, tickets, 3)
	first := tickets[0].(map[string]any)
	assert.Equal(t, float64(11), first["id"])
	assert.Equal(t, "Sem acesso à VPN", first["titulo"])
	assert.Equal(t, "Novo", first["status_name"])

	second := tickets[1].(map[string]any)
	assert.Equal(t, float64(20), second["id"])
	assert.Equal(t, "Impressora parou", second["titulo"])
	assert.Equal(t, "João", second["requerente_nome"])
	assert.Equal(t, "jo@acme.com", second["requerente_email"])

	third := tickets[2].(map[string]any)
	assert.Equal(t, float64(30), third["id"])
	assert.Equal(t, "Maria", third["tecnico_atribuido"])
}

func TestGetTicketsStatusOverride(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, map[string]string{
		"2": `{"totalcount":1,"count":1,"data":{"5":{"2":5,"12":2}},"data_html":{}}`,
	})
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodGet, "http://test/tenant/1/tickets?status=2", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	GetTickets(gdb)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, []string{"2"}, stub.searched)
	assert.Equal(t, float64(1), decodeBody(t, ctx)["total"])
}

func TestGetTicketsAuthFailure(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	stub.failLogin = true
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodGet, "http://test/tenant/1/tickets", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	GetTickets(gdb)(ctx)

	assert.Equal(t, fasthttp.StatusBadGateway, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, "falha na autenticação com o GLPI", body["message"])
	assert.Contains(t, body["error"], "login rejected")
}

func TestAssignTicketValidation(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	tenant := seedTenant(t, gdb, stub.URL)

	for _, body := range []string{`{}`, `{"ticket_id":5}`, `not json`} {
		ctx := newRequestCtx(fasthttp.MethodPost, "http://test/tenant/1/tickets/assign", []byte(body))
		ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
		AssignTicket(gdb)(ctx)

		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "body %q", body)
		assert.Equal(t, "ticket_id e user_id são obrigatórios", decodeBody(t, ctx)["message"])
	}
	assert.Zero(t, stub.hits.Load(), "invalid input must not touch the upstream")
}

func TestAssignTicket(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodPost, "http://test/tenant/1/tickets/assign",
		[]byte(`{"ticket_id":42,"user_id":7}`))
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	AssignTicket(gdb)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "Chamado atribuído com sucesso", decodeBody(t, ctx)["message"])
}

func TestAssignCategoryValidation(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodPost, "http://test/tenant/1/tickets/category",
		[]byte(`{"ticket_id":42}`))
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	AssignCategory(gdb)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "ticket_id e category_id são obrigatórios", decodeBody(t, ctx)["message"])
	assert.Zero(t, stub.hits.Load())
}

func TestDailyStatsPersists(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, map[string]string{
		"1": `{"totalcount":2,"count":2,"data":{"1":{"2":1,"12":1},"2":{"2":2,"12":1}},"data_html":{}}`,
		"4": `{"totalcount":1,"count":1,"data":{"9":{"2":9,"12":4}},"data_html":{}}`,
	})
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodGet, "http://test/tenant/1/stats", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	DailyStatsHandler(gdb)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, float64(2), body["chamados_disponiveis"])
	assert.Equal(t, float64(1), body["chamados_pendentes"])
	assert.Equal(t, float64(3), body["total"])

	stored, err := dbpkg.FindTenant(gdb, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stats.ChamadosDisponiveis)
	assert.Equal(t, 0, stored.Stats.ChamadosAtribuidos)
	assert.Equal(t, 1, stored.Stats.ChamadosPendentes)
	assert.Equal(t, 3, stored.Stats.Total)
	assert.False(t, stored.Stats.Data.IsZero())
}

func TestAutoAssignDisabled(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, nil)
	tenant := seedTenant(t, gdb, stub.URL)
	require.NoError(t, gdb.Model(tenant).
		Update("automation_auto_assign_enabled", false).Error)

	ctx := newRequestCtx(fasthttp.MethodPost, "http://test/tenant/1/tickets/auto-assign", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	AutoAssignTickets(gdb)(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "Atribuição automática desabilitada", decodeBody(t, ctx)["message"])
	assert.Zero(t, stub.hits.Load())
}

func TestAutoAssignTickets(t *testing.T) {
	gdb := newTestDB(t)
	stub := newGlpiStub(t, map[string]string{
		"1": `{"totalcount":2,"count":2,"data":{"1":{"2":1,"12":1},"2":{"2":2,"12":1}},"data_html":{}}`,
	})
	tenant := seedTenant(t, gdb, stub.URL)

	ctx := newRequestCtx(fasthttp.MethodPost, "http://test/tenant/1/tickets/auto-assign", nil)
	ctx.SetUserValue("tenant_id", fmt.Sprint(tenant.ID))
	AutoAssignTickets(gdb)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, float64(2), body["total_atribuidos"])
}
