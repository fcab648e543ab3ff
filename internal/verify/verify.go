// Package verify provides byte-for-byte confirmation that members of a
// (size, digest) bucket are genuinely identical, partitioning a bucket
// into equivalence classes on the rare hash collision.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/desbma/bdf/internal/bdftype"
	"github.com/desbma/bdf/internal/stats"
)

const compareBufferSize = 256 * 1024

// Partition compares every member of a HashBucket and returns the
// equivalence classes of byte-identical files, discarding singletons
// and any file that produced an I/O error along the way. The bucket's
// first member is always tried as the initial reference; a fast path
// handles the common two-member bucket with a single comparison.
func Partition(members []bdftype.FileEntry, log zerolog.Logger, st *stats.Run) [][]bdftype.FileEntry {
	classes := partition(members, log, st)

	result := make([][]bdftype.FileEntry, 0, len(classes))
	for _, class := range classes {
		if len(class) >= 2 {
			result = append(result, class)
		}
	}
	return result
}

func partition(members []bdftype.FileEntry, log zerolog.Logger, st *stats.Run) [][]bdftype.FileEntry {
	if len(members) == 0 {
		return nil
	}

	ref := members[0]
	rest := members[1:]

	if f, err := os.Open(ref.Path); err != nil {
		log.Warn().Err(err).Str("path", ref.Path).Msg("verify: skipping file")
		st.AddEntryError()
		return partition(rest, log, st)
	} else {
		f.Close()
	}

	if len(rest) == 0 {
		return [][]bdftype.FileEntry{{ref}}
	}

	same := []bdftype.FileEntry{ref}
	var mismatched []bdftype.FileEntry

	bufA := make([]byte, compareBufferSize)
	bufB := make([]byte, compareBufferSize)

	for _, m := range rest {
		eq, err := sameContent(ref.Path, m.Path, bufA, bufB)
		if err != nil {
			log.Warn().Err(err).Str("path", m.Path).Msg("verify: skipping file")
			st.AddEntryError()
			continue
		}
		st.AddBytesVerified(m.Size)
		if eq {
			same = append(same, m)
		} else {
			st.AddHashCollision()
			mismatched = append(mismatched, m)
		}
	}

	classes := [][]bdftype.FileEntry{same}
	classes = append(classes, partition(mismatched, log, st)...)
	return classes
}

// sameContent streams a and b in lockstep through equal-sized buffers and
// reports whether their contents are byte-identical. Both files are
// assumed to already be confirmed the same size by the caller.
func sameContent(a, b string, bufA, bufB []byte) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", a, err)
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", b, err)
	}
	defer fb.Close()

	for {
		na, erra := io.ReadFull(fa, bufA)
		if erra != nil && erra != io.EOF && erra != io.ErrUnexpectedEOF {
			return false, fmt.Errorf("read %s: %w", a, erra)
		}

		nb, errb := io.ReadFull(fb, bufB[:len(bufA)])
		if errb != nil && errb != io.EOF && errb != io.ErrUnexpectedEOF {
			return false, fmt.Errorf("read %s: %w", b, errb)
		}

		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		if erra == io.EOF || erra == io.ErrUnexpectedEOF {
			return errb == io.EOF || errb == io.ErrUnexpectedEOF, nil
		}
	}
}
