package cleanup

import (
	"math"
	"time"

	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// clampToMillis converts d to milliseconds. The saturated maximum duration
// (unbounded, the ∞ sentinel) is clamped to math.MaxInt64 milliseconds, so
// it reads back as unbounded (spec §4.5's "values that would overflow in
// that representation are clamped").
func clampToMillis(d time.Duration) int64 {
	if d >= unbounded {
		return math.MaxInt64
	}
	return d.Milliseconds()
}

// millisToDuration is the inverse of clampToMillis, saturating rather than
// overflowing when millis*time.Millisecond itself would overflow.
func millisToDuration(millis int64) time.Duration {
	const maxMillis = int64(math.MaxInt64) / int64(time.Millisecond)
	if millis >= maxMillis {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(millis) * time.Millisecond
}

// Truncated returns p with MinInterval and TimeFrame rounded through their
// millisecond representation, matching what a round trip through the
// database would produce. It is idempotent:
// p.Truncated().Truncated() == p.Truncated().
func (p Policy) Truncated() Policy {
	p.MinInterval = millisToDuration(clampToMillis(p.MinInterval))
	p.TimeFrame = millisToDuration(clampToMillis(p.TimeFrame))
	return p
}

// ToModel converts p to its manifest.db row shape.
func (p Policy) ToModel() models.CleanupPolicy {
	return models.CleanupPolicy{
		MinInterval: clampToMillis(p.MinInterval),
		TimeFrame:   clampToMillis(p.TimeFrame),
		MaxVersions: p.MaxVersions,
		Description: p.Description,
	}
}

// FromModel reconstructs a Policy from its manifest.db row.
func FromModel(row models.CleanupPolicy) Policy {
	return Policy{
		MinInterval: millisToDuration(row.MinInterval),
		TimeFrame:   millisToDuration(row.TimeFrame),
		MaxVersions: row.MaxVersions,
		Description: row.Description,
	}
}
