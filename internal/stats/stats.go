// Package stats holds the atomic run counters observed by the progress
// reporter and printed as the end-of-scan summary.
package stats

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Run collects counters updated throughout a scan. All fields are safe for
// concurrent use; workers update with the atomic methods below, readers
// (the progress reporter, the final summary) load a consistent snapshot.
type Run struct {
	filesSeen         atomic.Int64
	bytesToHash       atomic.Int64
	filesHashed       atomic.Int64
	bytesHashed       atomic.Int64
	bytesToVerify     atomic.Int64
	bytesVerified     atomic.Int64
	hashCollisions    atomic.Int64
	alreadyReflinked  atomic.Int64
	candidatesEmitted atomic.Int64
	entryErrors       atomic.Int64
}

func (r *Run) AddFileSeen()                    { r.filesSeen.Add(1) }
func (r *Run) AddBytesToHash(n int64)          { r.bytesToHash.Add(n) }
func (r *Run) AddFileHashed(size int64)        { r.filesHashed.Add(1); r.bytesHashed.Add(size) }
func (r *Run) AddBytesToVerify(n int64)        { r.bytesToVerify.Add(n) }
func (r *Run) AddBytesVerified(n int64)        { r.bytesVerified.Add(n) }
func (r *Run) AddHashCollision()               { r.hashCollisions.Add(1) }
func (r *Run) AddAlreadyReflinked()            { r.alreadyReflinked.Add(1) }
func (r *Run) AddCandidateEmitted()            { r.candidatesEmitted.Add(1) }
func (r *Run) AddEntryError()                  { r.entryErrors.Add(1) }

// HashProgress returns (bytes hashed, bytes to hash) for the hashing phase.
func (r *Run) HashProgress() (int64, int64) {
	return r.bytesHashed.Load(), r.bytesToHash.Load()
}

// VerifyProgress returns (bytes verified, bytes to verify) for the
// verification phase.
func (r *Run) VerifyProgress() (int64, int64) {
	return r.bytesVerified.Load(), r.bytesToVerify.Load()
}

// Snapshot is an immutable copy of Run suitable for printing or JSON
// marshalling at the end of a scan.
type Snapshot struct {
	FilesSeen         int64 `json:"files_seen"`
	FilesHashed       int64 `json:"files_hashed"`
	BytesHashed       int64 `json:"bytes_hashed"`
	HashCollisions    int64 `json:"hash_collisions"`
	AlreadyReflinked  int64 `json:"already_reflinked"`
	CandidatesEmitted int64 `json:"candidates_emitted"`
	EntryErrors       int64 `json:"entry_errors"`
}

// Snapshot takes a point-in-time copy of the counters.
func (r *Run) Snapshot() Snapshot {
	return Snapshot{
		FilesSeen:         r.filesSeen.Load(),
		FilesHashed:       r.filesHashed.Load(),
		BytesHashed:       r.bytesHashed.Load(),
		HashCollisions:    r.hashCollisions.Load(),
		AlreadyReflinked:  r.alreadyReflinked.Load(),
		CandidatesEmitted: r.candidatesEmitted.Load(),
		EntryErrors:       r.entryErrors.Load(),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"%d files, %d hashed (%s), %d hash collisions, %d already reflinked, %d candidates, %d errors",
		s.FilesSeen, s.FilesHashed, humanReadableBytes(s.BytesHashed),
		s.HashCollisions, s.AlreadyReflinked, s.CandidatesEmitted, s.EntryErrors,
	)
}

// JSON renders the snapshot as the document requested by --json-stats.
func (s Snapshot) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func humanReadableBytes(count int64) string {
	bytes := float64(count)
	units := []string{"bytes", "KiB", "MiB", "GiB", "TiB", "PiB"}
	for _, unit := range units {
		if bytes < 1024 {
			return fmt.Sprintf("%.02f %s", bytes, unit)
		}
		bytes /= 1024
	}
	return fmt.Sprintf("%.02f EiB", bytes)
}
