// Package cleanup implements spec §4.5's retention engine: per-path,
// windowed version retention driven by a set of policies attached to a
// timeline.
package cleanup

import (
	"math"
	"strconv"
	"time"
)

// Policy is a retention rule: "for the first TimeFrame after a new version
// of a file is created, keep at most MaxVersions versions of that file for
// each MinInterval-long window."
type Policy struct {
	MinInterval time.Duration
	TimeFrame   time.Duration
	MaxVersions int64
	Description string
}

// unbounded stands in for the algorithm's "infinite" time frame / interval:
// a single window spanning all of history.
const unbounded = time.Duration(math.MaxInt64)

// OfVersions keeps the newest n versions of each path and nothing else:
// (minInterval=∞, timeFrame=∞, maxVersions=n).
func OfVersions(n int64) Policy {
	return Policy{
		MinInterval: unbounded,
		TimeFrame:   unbounded,
		MaxVersions: n,
		Description: describeVersions(n),
	}
}

// OfDuration keeps every version created within the last n*unit:
// (minInterval=n*unit, timeFrame=n*unit, maxVersions=∞).
func OfDuration(n int64, unit time.Duration) Policy {
	span := saturatingMul(n, unit)
	return Policy{
		MinInterval: span,
		TimeFrame:   span,
		MaxVersions: math.MaxInt64,
		Description: describeDuration(n, unit),
	}
}

// OfStaggered keeps only the most recent version from each unit-long window
// over the last n units: (minInterval=unit, timeFrame=n*unit, maxVersions=1).
func OfStaggered(n int64, unit time.Duration) Policy {
	return Policy{
		MinInterval: unit,
		TimeFrame:   saturatingMul(n, unit),
		MaxVersions: 1,
		Description: describeStaggered(n, unit),
	}
}

// Forever keeps every version forever: (minInterval=∞, timeFrame=∞, maxVersions=∞).
func Forever() Policy {
	return Policy{
		MinInterval: unbounded,
		TimeFrame:   unbounded,
		MaxVersions: math.MaxInt64,
		Description: "keep every version forever",
	}
}

func saturatingMul(n int64, unit time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	const maxDuration = time.Duration(math.MaxInt64)
	if int64(unit) != 0 && n > int64(maxDuration)/int64(unit) {
		return maxDuration
	}
	return time.Duration(n) * unit
}

func describeVersions(n int64) string {
	return "keep the last " + itoa(n) + " versions"
}

func describeDuration(n int64, unit time.Duration) string {
	return "keep every version from the last " + itoa(n) + " " + unitName(unit)
}

func describeStaggered(n int64, unit time.Duration) string {
	return "keep only the last version from each " + unitName(unit) + " over the last " + itoa(n) + " " + unitName(unit) + "s"
}

func unitName(unit time.Duration) string {
	switch unit {
	case time.Second:
		return "second"
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	case 24 * time.Hour:
		return "day"
	default:
		return unit.String()
	}
}

func itoa(n int64) string {
	if n == math.MaxInt64 {
		return "unbounded"
	}
	return strconv.FormatInt(n, 10)
}
