// Package services defines shared utilities consumed by the run controller and
// the packages it drives.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     consistent and let the CLI pick an exit status with errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across a run.
package services
