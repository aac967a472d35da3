package types_test

import (
	"sort"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

func TestNewJobID(t *testing.T) {
	id1 := types.NewJobID()
	id2 := types.NewJobID()

	gt.String(t, id1.String()).NotEqual("")
	gt.Value(t, id1).NotEqual(id2)
}

func TestNewFragmentID(t *testing.T) {
	id1 := types.NewFragmentID()
	id2 := types.NewFragmentID()

	gt.String(t, id1.String()).NotEqual("")
	gt.Value(t, id1).NotEqual(id2)
}

func TestVersionKeyLexicalOrderIsChronological(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 8, 30, 23, 59, 59, 999999999, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 12, 0, 0, 1, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	keys := make([]string, 0, len(times))
	for _, at := range times {
		keys = append(keys, types.NewVersionKey(at).String())
	}
	sort.Strings(keys)

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, at := range times {
		gt.Value(t, keys[i]).Equal(types.NewVersionKey(at).String())
	}
}

func TestVersionKeyTimeRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 4, 5, 123456789, time.UTC)
	key := types.NewVersionKey(at)

	parsed, err := key.Time()
	gt.NoError(t, err).Required()
	gt.Value(t, parsed).Equal(at)
}
