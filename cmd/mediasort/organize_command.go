package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/config"
	"mediasort/internal/organizer"
	"mediasort/internal/runner"
	"mediasort/internal/services"
)

type organizeFlags struct {
	source  string
	dest    string
	label   string
	archive bool
	strict  bool
	noLock  bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Copy media from a backup directory or zip into the dated library",
		Long: `Copy every photo, video and audio recording from the source into
<destination>/<label>/<YYYY>/<Month>/<Pictures|Videos|Audio>/.

Files with an unrecognized extension are listed and left where they are. When
the source is a zip archive it is expanded into a staging directory first;
the staging directory and the archive are deleted only when every file was
placed. Directory sources are never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyOrganizeFlags(cmd, cfg, flags); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := []runner.Option{runner.WithLogger(logger)}
			var progress *progressObserver
			if !ctx.JSONMode() {
				progress = newProgressObserver(os.Stderr)
				opts = append(opts, runner.WithObserver(progress))
			}

			outcome, err := runner.New(cfg, opts...).Run(cmd.Context())
			if progress != nil {
				progress.Finish()
			}
			if err == nil && cfg.Run.Strict && !outcome.Result.Complete() {
				err = fmt.Errorf("%w: %s", errIncomplete, plural(len(outcome.Result.Unplaced), "file"))
			}

			if ctx.JSONMode() {
				if jsonErr := writeJSON(cmd, newOutcomeView(outcome, err)); jsonErr != nil {
					return jsonErr
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), renderOutcome(outcome, err))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Backup directory or .zip archive (overrides paths.source)")
	cmd.Flags().StringVarP(&flags.dest, "dest", "d", "", "Library root (overrides paths.destination)")
	cmd.Flags().StringVarP(&flags.label, "label", "l", "", "Collection label (overrides library.collection_label)")
	cmd.Flags().BoolVar(&flags.archive, "archive", false, "Treat the source as a zip archive even without a .zip suffix")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with status 4 when any file is left unplaced")
	cmd.Flags().BoolVar(&flags.noLock, "no-lock", false, "Do not lock the destination root")

	return cmd
}

// applyOrganizeFlags layers explicitly set flags over the loaded config.
func applyOrganizeFlags(cmd *cobra.Command, cfg *config.Config, flags organizeFlags) error {
	changed := cmd.Flags().Changed
	if changed("source") {
		path, err := config.ExpandPath(strings.TrimSpace(flags.source))
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "", "flags", "--source", err)
		}
		cfg.Paths.Source = path
	}
	if changed("dest") {
		path, err := config.ExpandPath(strings.TrimSpace(flags.dest))
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "", "flags", "--dest", err)
		}
		cfg.Paths.Destination = path
	}
	if changed("label") {
		cfg.Library.CollectionLabel = strings.TrimSpace(flags.label)
	}
	if changed("archive") {
		cfg.Run.ArchiveMode = flags.archive
	}
	if changed("strict") {
		cfg.Run.Strict = flags.strict
	}
	if changed("no-lock") && flags.noLock {
		cfg.Run.Lock = false
	}
	if err := cfg.ValidateRun(); err != nil {
		return services.Wrap(services.ErrConfiguration, "", "flags", "", err)
	}
	return nil
}

type outcomeView struct {
	runner.Outcome
	Error     string `json:"error,omitempty"`
	Preserved bool   `json:"preserved"`
	ExitCode  int    `json:"exit_code"`
}

func newOutcomeView(outcome runner.Outcome, err error) outcomeView {
	view := outcomeView{Outcome: outcome, Preserved: outcome.Preserved(), ExitCode: exitCode(err)}
	if err != nil && !errors.Is(err, errIncomplete) {
		view.Error = err.Error()
	}
	if view.Result.Placed == nil {
		view.Result.Placed = []organizer.Placement{}
	}
	if view.Result.Unplaced == nil {
		view.Result.Unplaced = []organizer.Unplaced{}
	}
	return view
}
