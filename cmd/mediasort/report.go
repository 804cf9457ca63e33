package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/runner"
)

// renderOutcome formats a run for the terminal: a headline, placed counts by
// category, every placed file with its final path, and every unplaced file
// with its original path.
func renderOutcome(outcome runner.Outcome, runErr error) string {
	var b strings.Builder
	result := outcome.Result

	status := string(outcome.State)
	if runErr != nil && !errors.Is(runErr, errIncomplete) {
		status = "failed"
	}
	fmt.Fprintf(&b, "Run %s %s in %s\n", shortID(outcome.RunID), status, outcome.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Source: %s", outcome.Source)
	if outcome.Archive {
		b.WriteString(" (archive)")
	}
	b.WriteString("\n\n")

	if len(result.Placed) > 0 {
		fmt.Fprintf(&b, "Placed %s (%s)\n", plural(len(result.Placed), "file"), logging.FormatBytes(result.PlacedBytes()))
		counts := result.CountByCategory()
		sizes := make(map[media.Category]int64, len(counts))
		for _, p := range result.Placed {
			sizes[p.Category] += p.Bytes
		}
		rows := make([][]string, 0, len(counts))
		for _, category := range media.Categories() {
			if counts[category] == 0 {
				continue
			}
			rows = append(rows, []string{category.String(), strconv.Itoa(counts[category]), logging.FormatBytes(sizes[category])})
		}
		b.WriteString(renderTable([]string{"Category", "Files", "Size"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))

		placed := make([][]string, 0, len(result.Placed))
		for _, p := range result.Placed {
			placed = append(placed, []string{p.Relative, p.Destination})
		}
		b.WriteString(renderTable([]string{"File", "Placed at"}, placed, nil))
	} else {
		b.WriteString("No files placed\n")
	}

	if len(result.Unplaced) > 0 {
		fmt.Fprintf(&b, "\nUnplaced %s (left in place):\n", plural(len(result.Unplaced), "file"))
		rows := make([][]string, 0, len(result.Unplaced))
		for _, u := range result.Unplaced {
			rows = append(rows, []string{u.Path, u.Reason, logging.FormatBytes(u.Bytes)})
		}
		b.WriteString(renderTable([]string{"Path", "Reason", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}

	switch {
	case outcome.CleanedUp():
		b.WriteString("\nStaging directory and archive removed\n")
	case outcome.Preserved() && outcome.Archive:
		fmt.Fprintf(&b, "\nKept %s and %s; handle the unplaced files, then rerun or delete the archive\n", outcome.StagingDir, outcome.Source)
	case outcome.Cleanup != nil:
		b.WriteString("\nCleanup incomplete:\n")
		for _, e := range outcome.Cleanup.Errors {
			fmt.Fprintf(&b, "  %s: %v\n", e.Path, e.Error)
		}
	case outcome.State == runner.StateFailed && outcome.Archive:
		b.WriteString("\nNothing was deleted\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
