package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "glpidesk/internal/db"
)

func ListPlans(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var plans []dbpkg.Plan
		if err := gdb.Order("preco").Find(&plans).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, plans)
	}
}

type planRequest struct {
	Nome      string  `json:"nome"`
	Descricao string  `json:"descricao"`
	Preco     float64 `json:"preco"`
	MaxUsers  int     `json:"max_users"`
	Ativo     *bool   `json:"ativo"`
}

func CreatePlan(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req planRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Nome == "" {
			writeMessage(ctx, fasthttp.StatusBadRequest, "nome do plano é obrigatório")
			return
		}

		plan := &dbpkg.Plan{
			Nome:      req.Nome,
			Descricao: req.Descricao,
			Preco:     req.Preco,
			MaxUsers:  req.MaxUsers,
			Ativo:     true,
		}
		if req.Ativo != nil {
			plan.Ativo = *req.Ativo
		}

		if err := gdb.Create(plan).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "plano já existe")
			return
		}
		writeJSON(ctx, fasthttp.StatusCreated, plan)
	}
}

func UpdatePlan(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}

		var plan dbpkg.Plan
		if err := gdb.First(&plan, id).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "Plano não encontrado")
			return
		}

		var req planRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		if req.Nome != "" {
			plan.Nome = req.Nome
		}
		if req.Descricao != "" {
			plan.Descricao = req.Descricao
		}
		if req.Preco > 0 {
			plan.Preco = req.Preco
		}
		if req.MaxUsers > 0 {
			plan.MaxUsers = req.MaxUsers
		}
		if req.Ativo != nil {
			plan.Ativo = *req.Ativo
		}

		if err := gdb.Save(&plan).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao salvar plano")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, plan)
	}
}

// DeletePlan removes a plan unless a tenant still references it.
func DeletePlan(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}

		var inUse int64
		if err := gdb.Model(&dbpkg.Tenant{}).Where("plan_id = ?", id).Count(&inUse).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro de banco de dados")
			return
		}
		if inUse > 0 {
			writeMessage(ctx, fasthttp.StatusBadRequest, "plano em uso por tenants ativos")
			return
		}

		result := gdb.Delete(&dbpkg.Plan{}, id)
		if result.Error != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao remover plano")
			return
		}
		if result.RowsAffected == 0 {
			writeMessage(ctx, fasthttp.StatusNotFound, "Plano não encontrado")
			return
		}
		writeMessage(ctx, fasthttp.StatusOK, "Plano removido com sucesso")
	}
}
