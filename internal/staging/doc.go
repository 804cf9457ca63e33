// Package staging expands phone-backup archives into a per-run staging
// directory and removes that directory (and the archive) once a run has
// placed every file.
//
// Each run extracts into <staging_dir>/<run id>. Runs that leave files
// unplaced keep their staging tree; CleanStale and ListDirectories let an
// operator inspect and reclaim those later.
package staging
