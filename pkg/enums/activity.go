package enums

import "fmt"

// ActivityType classifies an entry in a lead's activity log.
type ActivityType string

const (
	ActivityTypeMessage      ActivityType = "message"
	ActivityTypeCall         ActivityType = "call"
	ActivityTypeEmail        ActivityType = "email"
	ActivityTypeWhatsApp     ActivityType = "whatsapp"
	ActivityTypeStatusChange ActivityType = "status_change"
	ActivityTypeNote         ActivityType = "note"
)

var validActivityTypes = []ActivityType{
	ActivityTypeMessage,
	ActivityTypeCall,
	ActivityTypeEmail,
	ActivityTypeWhatsApp,
	ActivityTypeStatusChange,
	ActivityTypeNote,
}

func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}

// ActivityDirection records who initiated an interaction.
type ActivityDirection string

const (
	ActivityDirectionInbound  ActivityDirection = "inbound"
	ActivityDirectionOutbound ActivityDirection = "outbound"
	ActivityDirectionInternal ActivityDirection = "internal"
)

var validActivityDirections = []ActivityDirection{
	ActivityDirectionInbound,
	ActivityDirectionOutbound,
	ActivityDirectionInternal,
}

func (d ActivityDirection) IsValid() bool {
	for _, candidate := range validActivityDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseActivityDirection(value string) (ActivityDirection, error) {
	for _, candidate := range validActivityDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity direction %q", value)
}
