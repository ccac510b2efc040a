package glpi

import (
	"time"

	dbpkg "glpidesk/internal/db"
)

// Aggregate counts tickets into the daily status buckets. Total is the full
// input length: tickets in a status outside the four named buckets still
// count toward it (only statuses 1-4 are ever fetched in practice).
func Aggregate(tickets []NormalizedTicket, now time.Time) dbpkg.DailyStats {
	stats := dbpkg.DailyStats{Data: now, Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case StatusNew:
			stats.ChamadosDisponiveis++
		case StatusAssigned:
			stats.ChamadosAtribuidos++
		case StatusPlanned:
			stats.ChamadosPlanejados++
		case StatusPending:
			stats.ChamadosPendentes++
		}
	}
	return stats
}
