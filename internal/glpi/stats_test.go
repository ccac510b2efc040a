package glpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	statuses := []int{1, 1, 2, 3, 4, 4, 4, 99, 1, 2}
	tickets := make([]NormalizedTicket, len(statuses))
	for i, s := range statuses {
		tickets[i] = NormalizedTicket{ID: i + 1, Status: s}
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stats := Aggregate(tickets, now)

	assert.Equal(t, 3, stats.ChamadosDisponiveis)
	assert.Equal(t, 2, stats.ChamadosAtribuidos)
	assert.Equal(t, 1, stats.ChamadosPlanejados)
	assert.Equal(t, 3, stats.ChamadosPendentes)
	assert.Equal(t, 10, stats.Total, "tickets outside the named buckets still count toward total")
	assert.Equal(t, now, stats.Data)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, time.Now())
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.ChamadosDisponiveis)
}
