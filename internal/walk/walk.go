// Package walk is a thin wrapper over filepath.WalkDir that yields
// candidate regular files with their size, staying within one
// filesystem and never following symlinks.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/desbma/bdf/internal/bdftype"
	"github.com/desbma/bdf/internal/stats"
)

// Walk traverses root and sends one FileEntry per eligible regular file to
// the returned channel, which is closed when the walk finishes or ctx is
// canceled. minSize is an additional floor on top of the mandatory
// zero-size exclusion. A non-nil error return means root itself could not
// be walked at all; per-entry errors are logged and skipped.
func Walk(ctx context.Context, root string, minSize int64, log zerolog.Logger, st *stats.Run) (<-chan bdftype.FileEntry, error) {
	rootInfo, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("stat target directory: %w", err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("target %q is not a directory", root)
	}
	rootDevice, haveDevice := deviceID(rootInfo)

	out := make(chan bdftype.FileEntry)

	go func() {
		defer close(out)

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("walk: skipping entry")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			// never follow symlinks; do not descend into them either
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("walk: stat failed")
				return nil
			}

			if haveDevice {
				if dev, ok := deviceID(info); !ok || dev != rootDevice {
					return nil
				}
			}

			size := info.Size()
			if size == 0 {
				return nil
			}
			if size < minSize {
				return nil
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("walk: could not absolutize path")
				return nil
			}

			entry := bdftype.FileEntry{Path: absPath, Size: size}
			if dev, ok := deviceID(info); ok {
				entry.Device = dev
			}
			st.AddFileSeen()

			select {
			case out <- entry:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if walkErr != nil && walkErr != context.Canceled {
			log.Warn().Err(walkErr).Msg("walk: terminated early")
		}
	}()

	return out, nil
}
