package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrTenantNotFound is returned when a tenant id or slug resolves to
// nothing; handlers map it to 404.
var ErrTenantNotFound = errors.New("tenant not found")

// FindTenant loads a tenant by id.
func FindTenant(gdb *gorm.DB, id uint) (*Tenant, error) {
	var tenant Tenant
	if err := gdb.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindActiveTenantBySlug loads an active tenant by its slug, used by the
// login flow.
func FindActiveTenantBySlug(gdb *gorm.DB, slug string) (*Tenant, error) {
	var tenant Tenant
	err := gdb.Where("slug = ? AND ativo = ?", strings.ToLower(slug), true).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// SaveDailyStats overwrites the tenant's cached stats snapshot wholesale.
func SaveDailyStats(gdb *gorm.DB, tenantID uint, stats DailyStats) error {
	return gdb.Model(&Tenant{}).Where("id = ?", tenantID).Updates(map[string]any{
		"stats_data":                 stats.Data,
		"stats_chamados_disponiveis": stats.ChamadosDisponiveis,
		"stats_chamados_atribuidos":  stats.ChamadosAtribuidos,
		"stats_chamados_planejados":  stats.ChamadosPlanejados,
		"stats_chamados_pendentes":   stats.ChamadosPendentes,
		"stats_total":                stats.Total,
	}).Error
}

// FindActiveTenantUser loads an active user by tenant and email.
func FindActiveTenantUser(gdb *gorm.DB, tenantID uint, email string) (*TenantUser, error) {
	var user TenantUser
	err := gdb.Where("tenant_id = ? AND email = ? AND ativo = ?",
		tenantID, strings.ToLower(email), true).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
