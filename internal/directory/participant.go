package directory

// Participant is one row of the participant directory, keyed elsewhere by
// lowercase GitHub handle.
type Participant struct {
	TeamName  string `json:"team_name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Unassigned is the team applied to owners with no directory entry.
const Unassigned = "Unassigned"

// MergeParticipants overlays current directory data on top of historical
// data. Current entries win per handle; historical entries survive for
// participants since removed from the directory, so their team assignments
// are never lost.
func MergeParticipants(historical, current map[string]Participant) map[string]Participant {
	merged := make(map[string]Participant, len(historical)+len(current))
	for handle, p := range historical {
		merged[handle] = p
	}
	for handle, p := range current {
		merged[handle] = p
	}
	return merged
}
