package reporting

import (
	"fmt"
	"io"
	"sync"
)

// LineReporter writes the two status lines to a console. Both lines go out
// in a single write so a reader never sees one without the other.
type LineReporter struct {
	lock       sync.Mutex
	w          io.Writer
	lineEnding string
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w, lineEnding: "\n"}
}

func (l *LineReporter) Emit(r Report) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, err := fmt.Fprintf(l.w, "%s%s%s%s", r.ValueLine(), l.lineEnding, r.Message, l.lineEnding)
	if err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}
