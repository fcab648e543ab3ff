// Package pipeline wires together the full scan: enumerate paths,
// bucket by size, hash survivors, bucket by (size, digest), verify
// byte-for-byte, then filter out pairs that are already fully
// reflinked.
package pipeline

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/desbma/bdf/internal/bdftype"
	"github.com/desbma/bdf/internal/bucket"
	"github.com/desbma/bdf/internal/extent"
	"github.com/desbma/bdf/internal/hashpool"
	"github.com/desbma/bdf/internal/stats"
	"github.com/desbma/bdf/internal/verify"
	"github.com/desbma/bdf/internal/walk"
)

// Options configures a single scan.
type Options struct {
	TargetDir string
	MinSize   int64
	Jobs      int
}

// Run executes the full pipeline against opts.TargetDir and returns the
// reflink candidate pairs, in a stable order; the run counters accumulate
// in st. It blocks until the scan completes or ctx is canceled.
func Run(ctx context.Context, opts Options, log zerolog.Logger, st *stats.Run) ([]bdftype.Pair, error) {
	entries, err := walk.Walk(ctx, opts.TargetDir, opts.MinSize, log, st)
	if err != nil {
		return nil, err
	}

	bySize := bucket.BySize(entries, func(e bdftype.FileEntry) int64 { return e.Size })

	toHash := make(chan bdftype.FileEntry)
	go func() {
		defer close(toHash)
		for _, members := range bySize {
			for _, e := range members {
				st.AddBytesToHash(e.Size)
				select {
				case toHash <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	hashed := hashpool.Run(ctx, toHash, opts.Jobs, log, st)

	var hashedEntries []bdftype.FileEntry
	for e := range hashed {
		hashedEntries = append(hashedEntries, e)
	}

	byHash := bucket.ByKey(hashedEntries, func(e bdftype.FileEntry) bdftype.SizeHashKey {
		return bdftype.SizeHashKey{Size: e.Size, Digest: e.Digest}
	})

	var pairs []bdftype.Pair
	for _, members := range byHash {
		if ctx.Err() != nil {
			return pairs, ctx.Err()
		}

		for _, e := range members {
			st.AddBytesToVerify(e.Size)
		}

		for _, class := range verify.Partition(members, log, st) {
			pairs = append(pairs, extent.Pairs(class, log, st)...)
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	return pairs, nil
}
