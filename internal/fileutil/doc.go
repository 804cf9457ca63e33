// Package fileutil holds filesystem helpers shared by the organizer and the
// staging code: verified copies that preserve permissions and timestamps,
// and collision-free naming inside a destination directory. Everything goes
// through afero so callers can run against an in-memory filesystem in tests.
package fileutil
