// Command mediasort copies photos, videos and audio recordings from a phone
// backup (a directory or a zip export) into a library laid out as
// <destination>/<label>/<YYYY>/<Month>/<Pictures|Videos|Audio>/.
//
// Subcommands:
//
//	organize         run a full import
//	classify <file>  show where files would go without copying
//	check            run the preflight checks
//	staging list     list staging directories kept by earlier runs
//	staging clean    remove old staging directories
//	config init      write a sample configuration
//	config validate  load and validate the configuration
//
// Exit status is 0 on success, 1 for run failures, 2 for configuration or
// preflight problems, 3 when another run holds the destination lock, and 4
// when --strict is set and files were left unplaced.
package main
