package organizer

import (
	"fmt"
	"path/filepath"

	"mediasort/internal/media"
	"mediasort/internal/metadata"
)

// DestinationDir returns <root>/<label>/<YYYY>/<MonthName>/<Category>.
func DestinationDir(root, label string, ts metadata.Timestamp, category media.Category) string {
	return filepath.Join(root, label, fmt.Sprintf("%04d", ts.Year()), ts.MonthName(), string(category))
}
