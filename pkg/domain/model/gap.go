package model

import "github.com/duedil-lab/diligent/pkg/domain/types"

// Gap tracks one topic the investigation must cover. Gaps live only in the
// orchestrator's working state for the duration of a run; unresolved gaps
// are enumerated in the final report.
type Gap struct {
	Topic         string
	Status        types.GapStatus
	RaisedAtCycle int
	Attempts      int
}

// NewGap opens a gap for a topic at the given cycle
func NewGap(topic string, cycle int) *Gap {
	return &Gap{
		Topic:         topic,
		Status:        types.GapStatusOpen,
		RaisedAtCycle: cycle,
	}
}

// IsOpen reports whether the gap still needs evidence
func (g *Gap) IsOpen() bool {
	return g.Status == types.GapStatusOpen
}

// Resolve marks the gap as adequately evidenced
func (g *Gap) Resolve() {
	g.Status = types.GapStatusResolved
}
