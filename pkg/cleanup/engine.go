package cleanup

import (
	"fmt"
	"time"

	"github.com/reversion-fs/reversion/pkg/repository/models"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

// kept computes, for one path's non-pinned versions (newest first) and a
// set of policies, which versions spec §4.5's windowed algorithm retains.
func kept(versions []*timeline.Version, policies []Policy) map[*timeline.Version]bool {
	retained := make(map[*timeline.Version]bool)
	if len(versions) == 0 {
		return retained
	}
	t0 := versions[0].CreatedAt()

	for _, p := range policies {
		catchAll := p.TimeFrame == unbounded || p.MinInterval == unbounded || p.MinInterval <= 0
		n := windowCount(p)

		for k := n - 1; k >= 0; k-- {
			start, end := window(t0, p, k, catchAll)

			var count int64
			for _, v := range versions {
				if count >= p.MaxVersions {
					break
				}
				ct := v.CreatedAt()
				if ct.Before(start) || !ct.Before(end) {
					continue
				}
				if !retained[v] {
					retained[v] = true
				}
				count++
			}
		}
	}
	return retained
}

func windowCount(p Policy) int64 {
	if p.TimeFrame == unbounded || p.MinInterval == unbounded || p.MinInterval <= 0 {
		return 1
	}
	n := int64(p.TimeFrame / p.MinInterval)
	if n < 1 {
		n = 1
	}
	return n
}

func window(t0 time.Time, p Policy, k int64, catchAll bool) (start, end time.Time) {
	if catchAll {
		return time.Time{}, t0.Add(time.Nanosecond)
	}
	start = t0.Add(-p.TimeFrame + time.Duration(k)*p.MinInterval)
	end = start.Add(p.MinInterval)
	return start, end
}

// CleanPath implements timeline.CleanFunc: it applies policyRows to
// versions, deletes whatever the windowed algorithm does not retain
// (skipping pinned versions entirely, which are never candidates for
// deletion), and deletes any snapshot left with no versions.
func CleanPath(t *timeline.Timeline, path string, policyRows []models.CleanupPolicy, versions []*timeline.Version) error {
	policies := make([]Policy, len(policyRows))
	for i, row := range policyRows {
		policies[i] = FromModel(row)
	}

	var candidates []*timeline.Version
	for _, v := range versions {
		if !v.Pinned() {
			candidates = append(candidates, v)
		}
	}

	retained := kept(candidates, policies)

	touchedSnapshots := make(map[uint]bool)
	for _, v := range candidates {
		if retained[v] {
			continue
		}
		touchedSnapshots[v.SnapshotID()] = true
		if err := v.Delete(); err != nil {
			return fmt.Errorf("cleanup: deleting version of %s: %w", path, err)
		}
	}

	for id := range touchedSnapshots {
		snap, err := t.Snapshot(id)
		if err != nil {
			return fmt.Errorf("cleanup: loading snapshot %d: %w", id, err)
		}
		if _, err := snap.DeleteIfEmpty(); err != nil {
			return fmt.Errorf("cleanup: deleting empty snapshot %d: %w", id, err)
		}
	}

	return nil
}
