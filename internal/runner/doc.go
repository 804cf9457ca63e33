// Package runner sequences a complete organize run: validate and lock,
// optionally extract an archive into staging, organize, report, then either
// clean up or preserve the inputs.
//
// Deleting the archive is the only irreversible step. It happens only for
// archive runs where every file was placed and organizing returned no error.
// Directory sources are never deleted.
package runner
