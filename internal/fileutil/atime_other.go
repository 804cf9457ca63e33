//go:build !linux

package fileutil

import (
	"os"
	"time"
)

func accessTime(_ os.FileInfo, fallback time.Time) time.Time {
	return fallback
}
