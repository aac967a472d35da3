package model

import (
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// CurationEvent records one invocation of the curation model. Events are
// append-only; duplicates on retry are kept since they reflect real cost.
type CurationEvent struct {
	Timestamp   time.Time
	Slug        types.CompanySlug
	SourceID    string
	Topic       string
	InputChars  int
	OutputChars int
}

// CompanyUsage aggregates curation cost for one company
type CompanyUsage struct {
	EventCount  int `json:"events"`
	InputChars  int `json:"input_chars"`
	OutputChars int `json:"output_chars"`
}

// UsageSummary is a windowed aggregation over curation events
type UsageSummary struct {
	WindowSeconds int                     `json:"window_seconds"`
	EventCount    int                     `json:"events"`
	InputChars    int                     `json:"input_chars"`
	OutputChars   int                     `json:"output_chars"`
	PerCompany    map[string]CompanyUsage `json:"per_company"`
}
