package term

import (
	"strings"
	"sync"

	"github.com/brettbedarf/nsshell"
)

// Screen is an in-memory line-oriented text surface. Newlines start a new line,
// EraseLast removes the last character of the current line, Clear empties it.
type Screen struct {
	mu    sync.Mutex
	lines []string
	cur   strings.Builder
}

var _ nsshell.Sink = (*Screen)(nil)

func NewScreen() *Screen {
	return &Screen{}
}

func (s *Screen) Write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			s.cur.WriteString(text)
			return
		}
		s.cur.WriteString(text[:i])
		s.lines = append(s.lines, s.cur.String())
		s.cur.Reset()
		text = text[i+1:]
	}
}

func (s *Screen) EraseLast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.cur.String()
	if line == "" {
		return
	}
	s.cur.Reset()
	s.cur.WriteString(line[:len(line)-1])
}

func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.cur.Reset()
}

// Lines returns all completed lines followed by the current partial line.
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.lines)+1)
	out = append(out, s.lines...)
	return append(out, s.cur.String())
}

// Current returns the line the cursor is on.
func (s *Screen) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.String()
}

// String renders the whole surface joined with newlines.
func (s *Screen) String() string {
	return strings.Join(s.Lines(), "\n")
}
