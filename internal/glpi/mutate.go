package glpi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// actorTypeAssigned is GLPI's "assigned to" actor type in the
// ticket-to-user link table.
const actorTypeAssigned = 2

// AssignTicket links a technician to a ticket as its assignee. The write is
// not idempotent and is issued exactly once; on failure the upstream error
// surfaces to the caller with no retry.
func (c *Client) AssignTicket(session string, ticketID, userID int) (json.RawMessage, error) {
	url := c.BaseURL + "/Ticket/" + strconv.Itoa(ticketID) + "/Ticket_User/"
	return c.write("assignTicket", http.MethodPost, url, session, map[string]any{
		"tickets_id": ticketID,
		"users_id":   userID,
		"type":       actorTypeAssigned,
	})
}

// AssignCategory updates a ticket's ITIL category. Same at-most-once
// semantics as AssignTicket.
func (c *Client) AssignCategory(session string, ticketID, categoryID int) (json.RawMessage, error) {
	url := c.BaseURL + "/Ticket/" + strconv.Itoa(ticketID)
	return c.write("assignCategory", http.MethodPut, url, session, map[string]any{
		"id":                ticketID,
		"itilcategories_id": categoryID,
	})
}
