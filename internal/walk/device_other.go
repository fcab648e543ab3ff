//go:build !unix

package walk

import "io/fs"

// deviceID has no portable equivalent outside unix; the walk falls back to
// treating every entry as belonging to the root's filesystem.
func deviceID(info fs.FileInfo) (uint64, bool) {
	return 0, false
}
