// Package testsupport holds fixtures shared by package tests: temp-directory
// configs, file writers for afero filesystems, and byte builders for JPEGs
// with EXIF capture times and MP4 files with movie-header creation times.
package testsupport
