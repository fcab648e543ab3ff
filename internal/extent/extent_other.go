//go:build !linux

package extent

import "github.com/desbma/bdf/internal/bdftype"

// queryExtents has no implementation outside Linux; every file is
// reported unsupported, which the caller treats as a per-file error:
// the scan still completes, it just never emits pairs.
func queryExtents(path string) ([]bdftype.Interval, error) {
	return nil, ErrUnsupported
}
