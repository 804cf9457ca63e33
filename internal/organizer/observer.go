package organizer

// Observer receives per-file events so callers can draw progress without the
// organizer writing to stdout. Calls happen on the organizing goroutine.
type Observer interface {
	OnStart(total int)
	OnPlaced(p Placement)
	OnUnplaced(u Unplaced)
}

type nopObserver struct{}

func (nopObserver) OnStart(int)         {}
func (nopObserver) OnPlaced(Placement)  {}
func (nopObserver) OnUnplaced(Unplaced) {}

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	filtered := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

type multiObserver []Observer

func (m multiObserver) OnStart(total int) {
	for _, o := range m {
		o.OnStart(total)
	}
}

func (m multiObserver) OnPlaced(p Placement) {
	for _, o := range m {
		o.OnPlaced(p)
	}
}

func (m multiObserver) OnUnplaced(u Unplaced) {
	for _, o := range m {
		o.OnUnplaced(u)
	}
}
