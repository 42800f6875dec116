// Package term holds the concrete display sinks and the key input pump that sit
// outside the shell core.
package term

import (
	"io"
	"sync"

	"github.com/brettbedarf/nsshell"
)

// ANSI sequences understood by any VT100 compatible terminal.
const (
	eraseLastSeq   = "\b \b"
	clearScreenSeq = "\x1b[2J\x1b[H"
)

// Terminal is a [nsshell.Sink] writing to a VT100 style terminal.
// Write errors are dropped since the sink interface has no error channel;
// the first one is kept and reported by Err.
type Terminal struct {
	out io.Writer
	mu  sync.Mutex
	err error
}

var _ nsshell.Sink = (*Terminal)(nil)

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Write(text string) {
	t.write(text)
}

func (t *Terminal) EraseLast() {
	t.write(eraseLastSeq)
}

func (t *Terminal) Clear() {
	t.write(clearScreenSeq)
}

// Err returns the first write error seen, if any
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, s); err != nil && t.err == nil {
		t.err = err
	}
}
