//go:build linux

package fileutil

import (
	"os"
	"syscall"
	"time"
)

// accessTime returns the last access time recorded by the OS, falling back to
// fallback for in-memory filesystems.
func accessTime(info os.FileInfo, fallback time.Time) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return fallback
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec)
}
