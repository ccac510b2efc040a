package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"glpidesk/internal/config"
	dbpkg "glpidesk/internal/db"
	"glpidesk/internal/http/middleware"
)

const sessionTTL = 24 * time.Hour

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantSlug string `json:"tenant_slug"`
}

// Login authenticates a tenant user and issues a session token.
func Login(gdb *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil ||
			req.Email == "" || req.Password == "" || req.TenantSlug == "" {
			writeMessage(ctx, fasthttp.StatusBadRequest,
				"Email, senha e identificador da empresa são obrigatórios")
			return
		}

		tenant, err := dbpkg.FindActiveTenantBySlug(gdb, req.TenantSlug)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusUnauthorized, "Empresa não encontrada ou inativa")
			return
		}

		user, err := dbpkg.FindActiveTenantUser(gdb, tenant.ID, req.Email)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusUnauthorized, "Credenciais inválidas")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			writeMessage(ctx, fasthttp.StatusUnauthorized, "Credenciais inválidas")
			return
		}

		now := time.Now()
		gdb.Model(user).Update("ultimo_acesso", now)

		token, err := middleware.SignClaims(cfg, tenant.ID, user.ID, user.Role, sessionTTL)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao emitir token")
			return
		}

		writeJSON(ctx, fasthttp.StatusOK, map[string]any{
			"message": "Login realizado com sucesso",
			"token":   token,
			"user": map[string]any{
				"id":    user.ID,
				"nome":  user.Nome,
				"email": user.Email,
				"role":  user.Role,
			},
			"tenant": map[string]any{
				"id":   tenant.ID,
				"nome": tenant.Nome,
				"slug": tenant.Slug,
				"logo": tenant.Logo,
			},
		})
	}
}

type createUserRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateTenantUser adds a user to the caller's tenant. Only tenant admins
// may do this.
func CreateTenantUser(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		if claims.Role != "admin" {
			writeMessage(ctx, fasthttp.StatusForbidden, "apenas administradores podem criar usuários")
			return
		}

		var req createUserRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil ||
			req.Nome == "" || req.Email == "" || req.Password == "" {
			writeMessage(ctx, fasthttp.StatusBadRequest, "nome, email e password são obrigatórios")
			return
		}

		role := req.Role
		switch role {
		case "admin", "gestor", "viewer":
		case "":
			role = "viewer"
		default:
			writeMessage(ctx, fasthttp.StatusBadRequest, "role inválida")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao processar senha")
			return
		}

		user := &dbpkg.TenantUser{
			TenantID:     claims.TenantID,
			Nome:         req.Nome,
			Email:        strings.ToLower(req.Email),
			PasswordHash: string(hash),
			Role:         role,
			Ativo:        true,
		}
		if err := gdb.Create(user).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusBadRequest, "usuário já existe neste tenant")
			return
		}

		writeJSON(ctx, fasthttp.StatusCreated, user)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword lets an authenticated user rotate their own password.
func ChangePassword(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil ||
			req.CurrentPassword == "" || req.NewPassword == "" {
			writeMessage(ctx, fasthttp.StatusBadRequest, "current_password e new_password são obrigatórios")
			return
		}

		var user dbpkg.TenantUser
		if err := gdb.First(&user, claims.UserID).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusNotFound, "usuário não encontrado")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			writeMessage(ctx, fasthttp.StatusUnauthorized, "senha atual incorreta")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao processar senha")
			return
		}

		if err := gdb.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			writeMessage(ctx, fasthttp.StatusInternalServerError, "erro ao atualizar senha")
			return
		}

		writeMessage(ctx, fasthttp.StatusOK, "Senha alterada com sucesso")
	}
}
