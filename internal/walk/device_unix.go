//go:build unix

package walk

import (
	"io/fs"
	"syscall"
)

// deviceID extracts the device identifier backing info, so the walk can
// refuse to cross into a different filesystem (e.g. a bind mount).
func deviceID(info fs.FileInfo) (uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return 0, false
	}
	return uint64(stat.Dev), true // #nosec G115 -- platform-defined, representable in uint64
}
