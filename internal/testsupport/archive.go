package testsupport

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// ZipEntry describes one file written by ZipArchive.
type ZipEntry struct {
	Name     string
	Data     []byte
	Modified time.Time
	// DOSTime, when set and Modified is zero, is stored only in the legacy
	// MS-DOS date and time fields (wall clock, no zone), as phone exporters
	// without extended timestamps do.
	DOSTime time.Time
	// Mode sets the Unix mode bits, e.g. os.ModeSymlink|0o777 with the link
	// target as Data.
	Mode os.FileMode
}

// ZipArchive returns the bytes of a deflated zip holding entries in order.
// Names ending in "/" become directory entries.
func ZipArchive(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: e.Modified}
		if len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/' {
			hdr.Method = zip.Store
		}
		if e.Mode != 0 {
			hdr.SetMode(e.Mode)
		}
		if e.Modified.IsZero() && !e.DOSTime.IsZero() {
			hdr.ModifiedDate, hdr.ModifiedTime = dosDateTime(e.DOSTime)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("zip header %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// dosDateTime encodes the wall-clock fields of ts in MS-DOS format (2s
// resolution).
func dosDateTime(ts time.Time) (uint16, uint16) {
	date := uint16(ts.Day() + int(ts.Month())<<5 + (ts.Year()-1980)<<9)
	clock := uint16(ts.Second()/2 + ts.Minute()<<5 + ts.Hour()<<11)
	return date, clock
}
