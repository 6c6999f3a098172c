//go:build linux

package scanner

import (
	"os"
	"time"
)

// getCreateTime returns the creation time of a file.
// Linux does not reliably expose birth time through syscall.Stat_t,
// so this falls back to the modification time. FileRecord documents
// the caveat.
func getCreateTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
