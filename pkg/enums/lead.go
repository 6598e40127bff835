package enums

import "fmt"

// LeadStatus tracks where a sales lead sits in the pipeline.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

var validLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusWon,
	LeadStatusLost,
}

func (s LeadStatus) String() string {
	return string(s)
}

func (s LeadStatus) IsValid() bool {
	for _, candidate := range validLeadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts raw input into a LeadStatus.
func ParseLeadStatus(value string) (LeadStatus, error) {
	for _, candidate := range validLeadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead status %q", value)
}

// LeadSource is the channel a lead arrived through.
type LeadSource string

const (
	LeadSourceWebsite     LeadSource = "website"
	LeadSourceReferral    LeadSource = "referral"
	LeadSourceAutoScout24 LeadSource = "autoscout24"
	LeadSourceMobileDe    LeadSource = "mobile.de"
	LeadSourceMarketplace LeadSource = "marketplace"
	LeadSourceWalkIn      LeadSource = "walkin"
	LeadSourcePhone       LeadSource = "phone"
	LeadSourceOther       LeadSource = "other"
)

var validLeadSources = []LeadSource{
	LeadSourceWebsite,
	LeadSourceReferral,
	LeadSourceAutoScout24,
	LeadSourceMobileDe,
	LeadSourceMarketplace,
	LeadSourceWalkIn,
	LeadSourcePhone,
	LeadSourceOther,
}

func (s LeadSource) String() string {
	return string(s)
}

func (s LeadSource) IsValid() bool {
	for _, candidate := range validLeadSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadSource converts raw input into a LeadSource.
func ParseLeadSource(value string) (LeadSource, error) {
	for _, candidate := range validLeadSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead source %q", value)
}
