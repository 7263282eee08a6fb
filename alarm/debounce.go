package alarm

// Debouncer holds back a state change until it has been proposed on Confirm
// consecutive cycles. Confirm of 0 or 1 commits immediately.
type Debouncer struct {
	Confirm int

	pending State
	seen    int
}

func NewDebouncer(confirm int) *Debouncer {
	return &Debouncer{Confirm: confirm}
}

// Filter returns the state to commit given the current and proposed states.
func (d *Debouncer) Filter(current, proposed State) State {
	if d == nil || d.Confirm <= 1 {
		return proposed
	}
	if proposed == current {
		d.seen = 0
		return current
	}
	if proposed != d.pending || d.seen == 0 {
		d.pending = proposed
		d.seen = 0
	}
	d.seen += 1
	if d.seen < d.Confirm {
		return current
	}
	d.seen = 0
	return proposed
}
