// Package metadata resolves a media file's creation time.
//
// Resolution is an ordered chain of strategies, each returning an optional
// value: EXIF DateTimeOriginal for pictures (goexif), the ISO-BMFF movie
// header for videos (go-mp4), and finally the filesystem modification time.
// Unreadable or malformed metadata simply yields no value so the next
// strategy runs; only a missing file surfaces as an error.
package metadata
