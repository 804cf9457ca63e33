// Package organizer places media files into the dated library layout.
//
// Organize walks a source tree one file at a time. Each regular file is
// classified by extension; unclassified files are recorded as unplaced and
// never touched. Classified files get a creation time from the metadata
// resolver and are copied (never moved) to
// <root>/<label>/<YYYY>/<Month>/<Category>, picking name_N.ext when the name
// is already taken in that directory. Collision checks run against the live
// directory state, so files placed earlier in the same run count.
//
// A failed copy stops the run and returns the partial result. Callers must not
// clean up the source in that case.
package organizer
