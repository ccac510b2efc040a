package glpi

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// technicianProfileID is the GLPI profile granted to support technicians.
const technicianProfileID = 6

// Technician is a directory entry for a GLPI user holding the technician
// profile.
type Technician struct {
	ID           int    `json:"id"`
	Login        string `json:"login"`
	Nome         string `json:"nome"`
	Sobrenome    string `json:"sobrenome"`
	Email        string `json:"email"`
	Entidade     string `json:"entidade"`
	IsTechnician bool   `json:"is_technician"`
}

type userSearchResponse struct {
	Data []RawRow `json:"data"`
}

// Technicians lists users holding the technician profile.
func (c *Client) Technicians(session string) ([]Technician, error) {
	q := url.Values{}
	q.Set("criteria[0][field]", strconv.Itoa(UserFieldProfile))
	q.Set("criteria[0][searchtype]", "equals")
	q.Set("criteria[0][value]", strconv.Itoa(technicianProfileID))
	q.Set("forcedisplay[0]", strconv.Itoa(UserFieldLogin))
	q.Set("forcedisplay[1]", strconv.Itoa(UserFieldID))
	q.Set("forcedisplay[2]", strconv.Itoa(UserFieldFirstName))
	q.Set("forcedisplay[3]", strconv.Itoa(UserFieldLastName))
	q.Set("forcedisplay[4]", strconv.Itoa(UserFieldEmail))
	q.Set("forcedisplay[5]", strconv.Itoa(UserFieldEntity))
	q.Set("range", "0-500")
	q.Set("rawdata", "true")

	body, err := c.get("searchUser", c.BaseURL+"/search/User?"+q.Encode(), session)
	if err != nil {
		return nil, err
	}

	var result userSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{Err: err}
	}

	technicians := make([]Technician, 0, len(result.Data))
	for _, row := range result.Data {
		technicians = append(technicians, Technician{
			ID:           row.intval(UserFieldID),
			Login:        row.str(UserFieldLogin),
			Nome:         row.str(UserFieldFirstName),
			Sobrenome:    row.str(UserFieldLastName),
			Email:        row.str(UserFieldEmail),
			Entidade:     row.str(UserFieldEntity),
			IsTechnician: true,
		})
	}
	return technicians, nil
}

// Categories returns the raw ITIL category tree; callers pass it through
// unchanged.
func (c *Client) Categories(session string) (json.RawMessage, error) {
	return c.get("listCategories", c.BaseURL+"/ITILCategory?range=0-999&is_recursive=true", session)
}

// Entity is a GLPI organizational entity.
type Entity struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Level int    `json:"level"`
}

type rawEntity struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	CompleteName string `json:"completename"`
	Level        int    `json:"level"`
}

// Entities lists GLPI entities, preferring the fully qualified name.
func (c *Client) Entities(session string) ([]Entity, error) {
	body, err := c.get("listEntities", c.BaseURL+"/Entity?range=0-999", session)
	if err != nil {
		return nil, err
	}

	var raw []rawEntity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UpstreamError{Err: err}
	}

	entities := make([]Entity, 0, len(raw))
	for _, e := range raw {
		name := e.CompleteName
		if name == "" {
			name = e.Name
		}
		entities = append(entities, Entity{ID: e.ID, Nome: name, Level: e.Level})
	}
	return entities, nil
}
