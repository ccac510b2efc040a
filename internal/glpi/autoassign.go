package glpi

import "log"

// Assignment records one ticket handed to a technician by the auto-assign
// pass.
type Assignment struct {
	TicketID int    `json:"ticket_id"`
	Titulo   string `json:"titulo"`
	UserID   int    `json:"user_id"`
	Tecnico  string `json:"tecnico"`
}

// AutoAssign distributes every available (status new) ticket round-robin
// over the technician directory. Each assignment write is attempted exactly
// once; a failed write is logged and skipped, never retried, so a re-run
// cannot double-assign tickets that already went through.
func (c *Client) AutoAssign(session string) ([]Assignment, error) {
	result, err := c.SearchTicketsByStatus(session, StatusNew)
	if err != nil {
		return nil, err
	}
	tickets := Normalize([]SearchResponse{*result})
	if len(tickets) == 0 {
		return nil, nil
	}

	technicians, err := c.Technicians(session)
	if err != nil {
		return nil, err
	}
	if len(technicians) == 0 {
		return nil, nil
	}

	var assigned []Assignment
	for i, ticket := range tickets {
		tech := technicians[i%len(technicians)]
		if _, err := c.AssignTicket(session, ticket.ID, tech.ID); err != nil {
			log.Printf("auto-assign: ticket %d to %s failed: %v", ticket.ID, tech.Login, err)
			continue
		}
		assigned = append(assigned, Assignment{
			TicketID: ticket.ID,
			Titulo:   ticket.Title,
			UserID:   tech.ID,
			Tecnico:  tech.Nome,
		})
	}
	return assigned, nil
}
