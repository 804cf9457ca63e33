package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"mediasort/internal/organizer"
)

// progressObserver draws a progress bar while files are organized. It stays
// silent unless the writer is a terminal.
type progressObserver struct {
	out     io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out, enabled: isTerminal(out)}
}

func (p *progressObserver) OnStart(total int) {
	if !p.enabled {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Organizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func (p *progressObserver) OnPlaced(organizer.Placement) { p.step() }

func (p *progressObserver) OnUnplaced(organizer.Unplaced) { p.step() }

func (p *progressObserver) step() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish clears the bar so the report starts on a clean line.
func (p *progressObserver) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
