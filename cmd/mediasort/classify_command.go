package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/organizer"
	"mediasort/internal/services"
)

type classifyRow struct {
	Path        string `json:"path"`
	Category    string `json:"category"`
	Created     string `json:"created,omitempty"`
	DateSource  string `json:"date_source,omitempty"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show category, creation date and target directory without copying",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "", "timezone", "", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			org := organizer.New(fs, labelOrPlaceholder(cfg.Library.CollectionLabel),
				organizer.WithClassifier(media.NewClassifier(cfg.Library.ExtraVideoExtensions)),
				organizer.WithResolver(metadata.NewResolver(fs, metadata.WithLocation(loc), metadata.WithLogger(logger))),
				organizer.WithLogger(logger),
			)

			rows := make([]classifyRow, 0, len(args))
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					path = arg
				}
				row := classifyRow{Path: arg}
				file, err := org.Classify(path)
				row.Category = file.Category.String()
				switch {
				case err != nil:
					row.Error = err.Error()
				case file.Category.Placeable():
					row.Created = file.Created.Time.Format("2006-01-02 15:04:05")
					row.DateSource = string(file.Created.Source)
					row.Destination = org.DestinationFor(cfg.Paths.Destination, file)
				}
				rows = append(rows, row)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				detail := r.Destination
				if r.Error != "" {
					detail = "error: " + r.Error
				}
				table = append(table, []string{r.Path, r.Category, r.Created, r.DateSource, detail})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Category", "Created", "From", "Destination"},
				table,
				nil,
			))
			return nil
		},
	}
}

func labelOrPlaceholder(label string) string {
	if strings.TrimSpace(label) == "" {
		return "<label>"
	}
	return label
}
