package glpi

import (
	"sort"
	"strconv"
)

// Fallback display values when a ticket has no category or no assigned
// technician.
const (
	NoCategory = "Sem Categoria"
	Unassigned = "Não atribuído"
)

// NormalizedTicket is the canonical, sanitized, display-ready ticket record
// merged from GLPI's plain and HTML search views.
type NormalizedTicket struct {
	ID             int    `json:"id"`
	RequesterName  string `json:"requerente_nome"`
	RequesterEmail string `json:"requerente_email"`
	RequesterPhone string `json:"requerente_tel"`
	Title          string `json:"titulo"`
	Category       string `json:"categoria"`
	Urgency        int    `json:"urgencia"`
	Description    string `json:"descricao_inicial"`
	Status         int    `json:"status"`
	StatusName     string `json:"status_name"`
	OpenDate       string `json:"data_abertura"`
	Entity         string `json:"entidade"`
	Technician     string `json:"tecnico_atribuido"`
}

// Normalize merges a batch of per-status search responses into one ticket
// list. Responses are processed in call order; within one response, ticket
// ids are taken in ascending numeric order so the output is deterministic.
// A ticket id seen in an earlier response is skipped in later ones, so
// overlapping status buckets cannot produce duplicates.
func Normalize(responses []SearchResponse) []NormalizedTicket {
	seen := make(map[string]bool)
	var tickets []NormalizedTicket

	for _, resp := range responses {
		for _, id := range orderedTicketIDs(resp.Data) {
			if seen[id] {
				continue
			}
			seen[id] = true

			raw := resp.Data[id]
			html := RawRow{}
			if h, ok := resp.DataHTML[id]; ok {
				html = h
			}
			tickets = append(tickets, normalizeOne(raw, html))
		}
	}
	return tickets
}

// orderedTicketIDs filters the response keys down to numeric ticket ids and
// sorts them numerically.
func orderedTicketIDs(data map[string]RawRow) []string {
	ids := make([]string, 0, len(data))
	for id := range data {
		if _, err := strconv.Atoi(id); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

func normalizeOne(raw, html RawRow) NormalizedTicket {
	status := raw.intval(FieldStatus)
	if status == 0 {
		status = html.intval(FieldStatus)
	}

	statusName := Clean(html.str(FieldStatus))
	if statusName == "" {
		statusName = "Status " + strconv.Itoa(status)
	}

	category := Clean(pickText(html, raw, FieldCategory))
	if category == "" {
		category = NoCategory
	}

	requester := ExtractContactInfo(html.str(FieldRequester))
	technician := ExtractContactInfo(html.str(FieldTechnician)).Nome
	if technician == "" {
		technician = Unassigned
	}

	urgency := raw.intval(FieldUrgency)
	if urgency == 0 {
		urgency = html.intval(FieldUrgency)
	}

	return NormalizedTicket{
		ID:             raw.intval(FieldID),
		RequesterName:  requester.Nome,
		RequesterEmail: requester.Email,
		RequesterPhone: requester.Telefone,
		Title:          Clean(pickText(html, raw, FieldTitle)),
		Category:       category,
		Urgency:        urgency,
		Description:    Clean(pickText(html, raw, FieldDescription)),
		Status:         status,
		StatusName:     statusName,
		OpenDate:       raw.str(FieldOpenDate),
		Entity:         raw.str(FieldEntity),
		Technician:     technician,
	}
}

// pickText prefers the HTML-rendered view of a text column, falling back to
// the plain view when the HTML one is absent.
func pickText(html, raw RawRow, field int) string {
	if v := html.str(field); v != "" {
		return v
	}
	return raw.str(field)
}
