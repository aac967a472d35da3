package types

import (
	"time"

	"github.com/google/uuid"
)

// JobID is a UUID v7 identifier for an investigation job
type JobID string

// NewJobID generates a new time-ordered JobID
func NewJobID() JobID {
	return JobID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the job ID
func (id JobID) String() string {
	return string(id)
}

// FragmentID is a UUID-based identifier for a knowledge fragment
type FragmentID string

// NewFragmentID generates a new UUID v4 FragmentID
func NewFragmentID() FragmentID {
	return FragmentID(uuid.New().String())
}

// String returns the string representation of the fragment ID
func (id FragmentID) String() string {
	return string(id)
}

// VersionKey identifies one archived document version. Keys are fixed-width
// UTC timestamps so that lexical order equals chronological order.
type VersionKey string

const versionKeyFormat = "20060102150405.000000000"

// NewVersionKey derives the archive key for a document version from its
// last-modified timestamp.
func NewVersionKey(t time.Time) VersionKey {
	return VersionKey(t.UTC().Format(versionKeyFormat))
}

// Time parses the key back into its timestamp
func (k VersionKey) Time() (time.Time, error) {
	return time.Parse(versionKeyFormat, string(k))
}

// String returns the string representation of the version key
func (k VersionKey) String() string {
	return string(k)
}
