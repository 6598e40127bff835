package leads

import (
	"testing"

	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]enums.LeadStatus{
		{enums.LeadStatusNew, enums.LeadStatusContacted},
		{enums.LeadStatusNew, enums.LeadStatusQualified},
		{enums.LeadStatusNew, enums.LeadStatusLost},
		{enums.LeadStatusContacted, enums.LeadStatusWon},
		{enums.LeadStatusQualified, enums.LeadStatusContacted},
		{enums.LeadStatusLost, enums.LeadStatusNew},
	}
	for _, pair := range allowed {
		assert.Truef(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]enums.LeadStatus{
		{enums.LeadStatusNew, enums.LeadStatusWon},
		{enums.LeadStatusWon, enums.LeadStatusLost},
		{enums.LeadStatusWon, enums.LeadStatusNew},
		{enums.LeadStatusLost, enums.LeadStatusQualified},
		{enums.LeadStatusNew, enums.LeadStatusNew},
		{"archived", enums.LeadStatusNew},
	}
	for _, pair := range denied {
		assert.Falsef(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}
