// Package bdftype holds the data types shared across the scanning pipeline:
// the file handle produced by the walk, the byte interval describing one
// mapping of logical to physical storage, and the pair emitted on stdout.
package bdftype

import "fmt"

// FileEntry is a regular file discovered during the walk. Size is populated
// by the walk; Digest is populated once the file has passed the size
// prefilter and been hashed.
type FileEntry struct {
	Path   string
	Size   int64
	Device uint64
	Digest uint64
}

// SizeHashKey groups FileEntry values by the (size, digest) pair used for
// the second bucketing pass.
type SizeHashKey struct {
	Size   int64
	Digest uint64
}

// Interval is a physical (offset, length) byte range backing some logical
// range of a file. Intervals are always considered in coalesced form: no
// two intervals in a normalized slice touch or overlap.
type Interval struct {
	PhysOffset uint64
	Length     uint64
}

// End returns the exclusive end offset of the interval.
func (iv Interval) End() uint64 {
	return iv.PhysOffset + iv.Length
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.PhysOffset, iv.End())
}

// Pair is an unordered duplicate-file candidate: two paths with identical
// contents whose physical extents are not (fully) shared.
type Pair struct {
	A, B string
}
