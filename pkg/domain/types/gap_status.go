package types

// GapStatus represents whether an investigation topic is adequately evidenced
type GapStatus string

const (
	GapStatusOpen     GapStatus = "open"
	GapStatusResolved GapStatus = "resolved"
)

// IsValid checks if the gap status is valid
func (s GapStatus) IsValid() bool {
	switch s {
	case GapStatusOpen, GapStatusResolved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the gap status
func (s GapStatus) String() string {
	return string(s)
}
