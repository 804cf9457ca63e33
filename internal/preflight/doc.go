// Package preflight provides readiness checks for the filesystem paths a
// run depends on.
//
// These checks run in two contexts:
//   - The run controller calls RunAll before extracting or copying anything
//     and refuses to start when a check fails.
//   - The CLI "mediasort check" command renders the same results as a table.
package preflight
