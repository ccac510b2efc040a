package glpi

import (
	"encoding/json"
	"log"
	"net/url"
	"sort"
	"strconv"
)

// ticketRange approximates "fetch everything" for one status bucket. GLPI
// silently truncates beyond the requested range; fetches past the ceiling
// are logged and counted but not treated as errors.
const ticketRange = "0-9999"

// SearchResponse is GLPI's search envelope: the same rows keyed by ticket
// id twice, once with plain values and once HTML-rendered.
type SearchResponse struct {
	TotalCount int               `json:"totalcount"`
	Count      int               `json:"count"`
	Data       map[string]RawRow `json:"data"`
	DataHTML   map[string]RawRow `json:"data_html"`
}

// BuildTicketSearchURL builds a search/Ticket query for one status value.
// Deleted tickets are always filtered out, and the status criterion is
// AND-combined with that.
func BuildTicketSearchURL(baseURL string, status int) string {
	q := url.Values{}
	q.Set("range", ticketRange)
	q.Set("withindexes", "true")
	q.Set("giveItems", "true")
	for i, field := range ticketDisplayFields {
		q.Set("forcedisplay["+strconv.Itoa(i)+"]", strconv.Itoa(field))
	}
	q.Set("criteria[0][field]", strconv.Itoa(FieldIsDeleted))
	q.Set("criteria[0][searchtype]", "equals")
	q.Set("criteria[0][value]", "0")
	q.Set("criteria[1][link]", "AND")
	q.Set("criteria[1][field]", strconv.Itoa(FieldStatus))
	q.Set("criteria[1][searchtype]", "equals")
	q.Set("criteria[1][value]", strconv.Itoa(status))
	return baseURL + "/search/Ticket?" + q.Encode()
}

// SearchTicketsByStatus fetches every non-deleted ticket in one status
// bucket, up to the fixed range ceiling.
func (c *Client) SearchTicketsByStatus(session string, status int) (*SearchResponse, error) {
	body, err := c.get("searchTicket", BuildTicketSearchURL(c.BaseURL, status), session)
	if err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{Err: err}
	}

	if result.TotalCount > len(result.Data) && len(result.Data) > 0 {
		log.Printf("glpi search truncated for tenant %s status %d: got %d of %d tickets",
			c.Tenant, status, len(result.Data), result.TotalCount)
		countTruncation(c.Tenant)
	}
	return &result, nil
}

// FetchTickets runs one search per status value and collects the non-empty
// responses. Fetches are sequential in ascending status order so the merged
// output is deterministic regardless of the order the caller passed.
func (c *Client) FetchTickets(session string, statuses []int) ([]SearchResponse, error) {
	ordered := make([]int, len(statuses))
	copy(ordered, statuses)
	sort.Ints(ordered)

	var responses []SearchResponse
	for _, status := range ordered {
		result, err := c.SearchTicketsByStatus(session, status)
		if err != nil {
			return nil, err
		}
		if len(result.Data) > 0 {
			responses = append(responses, *result)
		}
	}
	return responses, nil
}
