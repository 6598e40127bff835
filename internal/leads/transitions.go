package leads

import "github.com/dealeros/dealeros-backend/pkg/enums"

// allowedTransitions lists the legal next states. won is terminal; lost may only reopen to new.
var allowedTransitions = map[enums.LeadStatus][]enums.LeadStatus{
	enums.LeadStatusNew:       {enums.LeadStatusContacted, enums.LeadStatusQualified, enums.LeadStatusLost},
	enums.LeadStatusContacted: {enums.LeadStatusQualified, enums.LeadStatusWon, enums.LeadStatusLost},
	enums.LeadStatusQualified: {enums.LeadStatusWon, enums.LeadStatusLost, enums.LeadStatusContacted},
	enums.LeadStatusLost:      {enums.LeadStatusNew},
}

// CanTransition reports whether a lead may move from one status to another.
// Staying in the same status is not a transition and returns false.
func CanTransition(from, to enums.LeadStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
