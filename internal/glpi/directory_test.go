package glpi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnicians(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/User", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "20", q.Get("criteria[0][field]"))
		require.Equal(t, "6", q.Get("criteria[0][value]"))
		require.Equal(t, "0-500", q.Get("range"))

		fmt.Fprint(w, `{"data":[
			{"1":"csantos","2":31,"9":"Carlos","34":"Santos","5":"carlos@acme.com","80":"Matriz"},
			{"1":"alima","2":45,"9":"Ana","34":"Lima","5":"ana@acme.com","80":"Filial SP"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "app-token", "system")
	technicians, err := client.Technicians("sess")
	require.NoError(t, err)
	require.Len(t, technicians, 2)

	assert.Equal(t, Technician{
		ID:           31,
		Login:        "csantos",
		Nome:         "Carlos",
		Sobrenome:    "Santos",
		Email:        "carlos@acme.com",
		Entidade:     "Matriz",
		IsTechnician: true,
	}, technicians[0])
	assert.Equal(t, 45, technicians[1].ID)
}

func TestEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Entity", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":0,"name":"Root","completename":"","level":1},
			{"id":3,"name":"SP","completename":"Root > SP","level":2}
		]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "app-token", "system")
	entities, err := client.Entities("sess")
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, Entity{ID: 0, Nome: "Root", Level: 1}, entities[0])
	assert.Equal(t, Entity{ID: 3, Nome: "Root > SP", Level: 2}, entities[1])
}

func TestAutoAssignRoundRobin(t *testing.T) {
	var assignments []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search/Ticket":
			fmt.Fprint(w, `{"totalcount":3,"data":{
				"1":{"2":1,"12":1},
				"2":{"2":2,"12":1},
				"3":{"2":3,"12":1}
			}}`)
		case r.URL.Path == "/search/User":
			fmt.Fprint(w, `{"data":[
				{"1":"csantos","2":31,"9":"Carlos"},
				{"1":"alima","2":45,"9":"Ana"}
			]}`)
		case r.Method == http.MethodPost:
			assignments = append(assignments, r.URL.Path)
			fmt.Fprint(w, `{"id":1}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "app-token", "acme")
	assigned, err := client.AutoAssign("sess")
	require.NoError(t, err)
	require.Len(t, assigned, 3)

	assert.Equal(t, []string{
		"/Ticket/1/Ticket_User/",
		"/Ticket/2/Ticket_User/",
		"/Ticket/3/Ticket_User/",
	}, assignments)

	// Round-robin alternates technicians.
	assert.Equal(t, 31, assigned[0].UserID)
	assert.Equal(t, 45, assigned[1].UserID)
	assert.Equal(t, 31, assigned[2].UserID)
}

func TestAutoAssignSkipsFailedWrites(t *testing.T) {
	posts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search/Ticket":
			fmt.Fprint(w, `{"totalcount":2,"data":{"1":{"2":1,"12":1},"2":{"2":2,"12":1}}}`)
		case r.URL.Path == "/search/User":
			fmt.Fprint(w, `{"data":[{"1":"csantos","2":31,"9":"Carlos"}]}`)
		case r.Method == http.MethodPost:
			posts++
			if posts == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"id":1}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "app-token", "acme")
	assigned, err := client.AutoAssign("sess")
	require.NoError(t, err)

	assert.Len(t, assigned, 1, "failed assignment is skipped, not retried")
	assert.Equal(t, 2, posts)
	assert.Equal(t, 2, assigned[0].TicketID)
}
