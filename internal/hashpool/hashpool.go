// Package hashpool runs a fixed-size worker pool that computes the
// XXH3-64 content digest of each surviving FileEntry, overlapping disk
// I/O across workers.
package hashpool

import (
	"bufio"
	"context"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/desbma/bdf/internal/bdftype"
	"github.com/desbma/bdf/internal/stats"
)

// readBufferSize is the chunk size used to stream a file into the hasher.
const readBufferSize = 256 * 1024

// Workers returns n if positive, otherwise the number of logical CPUs.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Run hashes every entry received on in with workers goroutines and sends
// the annotated entries to the returned channel, closed once every worker
// has drained in (or ctx is canceled). Per-file errors are logged and the
// entry is dropped, never sent downstream.
func Run(ctx context.Context, in <-chan bdftype.FileEntry, workers int, log zerolog.Logger, st *stats.Run) <-chan bdftype.FileEntry {
	workers = Workers(workers)
	out := make(chan bdftype.FileEntry)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			buf := make([]byte, readBufferSize)
			for entry := range in {
				digest, err := hashFile(entry.Path, buf)
				if err != nil {
					log.Warn().Err(err).Str("path", entry.Path).Msg("hash: skipping file")
					st.AddEntryError()
					continue
				}
				entry.Digest = digest
				st.AddFileHashed(entry.Size)

				select {
				case out <- entry:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// hashFile streams path's entire current contents through a buffered
// reader into an XXH3-64 state and returns the resulting digest.
func hashFile(path string, buf []byte) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	r := bufio.NewReaderSize(f, readBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
