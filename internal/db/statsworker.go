package db

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// refreshStatsOnce recomputes and persists the daily-stats snapshot for
// every active tenant. Failures are per-tenant and best-effort: one broken
// GLPI instance must not block the others.
func refreshStatsOnce(gdb *gorm.DB, refresh func(*Tenant) (DailyStats, error)) {
	var tenants []Tenant
	if err := gdb.Where("ativo = ?", true).Find(&tenants).Error; err != nil {
		log.Printf("stats worker: tenant listing failed: %v", err)
		return
	}

	for i := range tenants {
		tenant := &tenants[i]
		stats, err := refresh(tenant)
		if err != nil {
			log.Printf("stats worker: refresh for tenant %s failed: %v", tenant.Slug, err)
			continue
		}
		if err := SaveDailyStats(gdb, tenant.ID, stats); err != nil {
			log.Printf("stats worker: save for tenant %s failed: %v", tenant.Slug, err)
		}
	}
}

// StartStatsWorker launches a background goroutine that refreshes every
// active tenant's daily-stats snapshot once at startup and then on each
// tick. The refresh callback does the upstream fetch and aggregation so
// this package stays free of GLPI knowledge.
func StartStatsWorker(gdb *gorm.DB, interval time.Duration, refresh func(*Tenant) (DailyStats, error)) {
	go func() {
		refreshStatsOnce(gdb, refresh)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			refreshStatsOnce(gdb, refresh)
		}
	}()
}
