package glpi

import (
	"strconv"
	"strings"
)

// GLPI's generic search engine addresses columns by numeric ids. These are
// the Ticket columns this service relies on; if the upstream schema ever
// drifts, this table is the only place that needs to change.
const (
	FieldTitle       = 1
	FieldID          = 2
	FieldUrgency     = 3
	FieldRequester   = 4
	FieldTechnician  = 5
	FieldCategory    = 7
	FieldStatus      = 12
	FieldOpenDate    = 15
	FieldDescription = 21
	FieldIsDeleted   = 23
	FieldEntity      = 80
)

// Search columns for the User type, used by the technician directory.
const (
	UserFieldLogin     = 1
	UserFieldID        = 2
	UserFieldEmail     = 5
	UserFieldFirstName = 9
	UserFieldProfile   = 20
	UserFieldLastName  = 34
	UserFieldEntity    = 80
)

// Ticket lifecycle status codes.
const (
	StatusNew      = 1
	StatusAssigned = 2
	StatusPlanned  = 3
	StatusPending  = 4
)

// DefaultStatuses are the stages the dashboard cares about. The sentinel
// filter value "10" in a tenant's automation config expands to this set.
var DefaultStatuses = []int{StatusNew, StatusAssigned, StatusPlanned, StatusPending}

// ticketDisplayFields is the fixed forcedisplay set for ticket searches,
// matching the columns the normalizer consumes.
var ticketDisplayFields = []int{
	FieldTitle,
	FieldID,
	FieldUrgency,
	FieldRequester,
	FieldTechnician,
	FieldCategory,
	FieldStatus,
	FieldOpenDate,
	FieldDescription,
	FieldEntity,
}

// ParseStatusFilter expands a comma-separated status filter string into a
// list of status codes. The empty string and the sentinel "10" mean "all
// dashboard statuses". Values that are not integers are dropped.
func ParseStatusFilter(filter string) []int {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "10" {
		out := make([]int, len(DefaultStatuses))
		copy(out, DefaultStatuses)
		return out
	}
	var statuses []int
	for _, part := range strings.Split(filter, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			statuses = append(statuses, v)
		}
	}
	if len(statuses) == 0 {
		out := make([]int, len(DefaultStatuses))
		copy(out, DefaultStatuses)
		return out
	}
	return statuses
}
