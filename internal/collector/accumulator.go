package collector

import (
	"errors"

	"github.com/user/profile-collector/internal/entity"
)

// ErrInvariantViolation means a record without a URL reached the
// accumulator. Extraction never produces one, so this is a logic error.
var ErrInvariantViolation = errors.New("record without url reached the accumulator")

// Accumulator is an insertion-ordered set of records keyed by URL. The first
// sighting of a URL wins; later sightings are ignored. It is owned by a
// single collection run and is not safe for concurrent use.
type Accumulator struct {
	records []entity.ProfileRecord
	seen    map[string]struct{}
	limit   int
}

// NewAccumulator returns an empty accumulator holding at most limit records,
// or any number when limit is zero.
func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{
		seen:  make(map[string]struct{}),
		limit: limit,
	}
}

// Merge appends the records whose URL has not been seen and reports how many
// were added. It stops at the limit. A record with an empty URL aborts the
// merge with ErrInvariantViolation; records before it are kept.
func (a *Accumulator) Merge(records []entity.ProfileRecord) (int, error) {
	added := 0
	for _, r := range records {
		if r.URL == "" {
			return added, ErrInvariantViolation
		}
		if a.Full() {
			break
		}
		if _, ok := a.seen[r.URL]; ok {
			continue
		}
		a.seen[r.URL] = struct{}{}
		a.records = append(a.records, r)
		added++
	}
	return added, nil
}

func (a *Accumulator) Len() int { return len(a.records) }

// Full reports whether the limit has been reached.
func (a *Accumulator) Full() bool {
	return a.limit > 0 && len(a.records) >= a.limit
}

// Records returns a copy of the accumulated records in first-seen order.
func (a *Accumulator) Records() []entity.ProfileRecord {
	out := make([]entity.ProfileRecord, len(a.records))
	copy(out, a.records)
	return out
}
