// Package extent queries a file's physical extent map, normalizes it,
// and decides whether two equivalent files are already fully reflinked
// with respect to each other.
package extent

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/desbma/bdf/internal/bdftype"
	"github.com/desbma/bdf/internal/stats"
)

// ErrUnsupported is returned by queryExtents when the current platform has
// no extent-map mechanism this package knows how to use. On Linux, a
// filesystem without FIEMAP support surfaces as the ioctl's errno instead.
var ErrUnsupported = errors.New("extent map unsupported on this platform or filesystem")

// Coalesce sorts intervals by physical offset and merges any that touch or
// overlap. The kernel is free to split a logically contiguous run across
// arbitrary extent boundaries; comparing raw extent lists would treat two
// equivalent layouts as different.
func Coalesce(intervals []bdftype.Interval) []bdftype.Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]bdftype.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PhysOffset < sorted[j].PhysOffset })

	merged := make([]bdftype.Interval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.PhysOffset <= cur.End() {
			if next.End() > cur.End() {
				cur.Length = next.End() - cur.PhysOffset
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}

// FullyShared reports whether a and b's coalesced physical interval sets
// are identical - i.e. every physical byte in one also appears in the
// other, and vice versa.
func FullyShared(a, b []bdftype.Interval) bool {
	ca, cb := Coalesce(a), Coalesce(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

// Pairs inspects one EquivalenceClass and returns the unordered pairs
// whose extents are not fully shared - the reflinking candidates. Files
// whose extent map could not be queried are logged and omitted from all
// pairings for this class; the remaining members are still paired.
func Pairs(class []bdftype.FileEntry, log zerolog.Logger, st *stats.Run) []bdftype.Pair {
	return pairsWith(class, log, st, queryExtents)
}

func pairsWith(class []bdftype.FileEntry, log zerolog.Logger, st *stats.Run, query func(string) ([]bdftype.Interval, error)) []bdftype.Pair {
	intervals := make(map[string][]bdftype.Interval, len(class))
	usable := make([]bdftype.FileEntry, 0, len(class))

	for _, entry := range class {
		ivs, err := query(entry.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", entry.Path).Msg("extent: skipping file")
			st.AddEntryError()
			continue
		}
		intervals[entry.Path] = Coalesce(ivs)
		usable = append(usable, entry)
	}

	var pairs []bdftype.Pair
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			a, b := usable[i], usable[j]
			if FullyShared(intervals[a.Path], intervals[b.Path]) {
				st.AddAlreadyReflinked()
				continue
			}
			st.AddCandidateEmitted()
			pairs = append(pairs, bdftype.Pair{A: a.Path, B: b.Path})
		}
	}
	return pairs
}
