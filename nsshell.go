// Package nsshell contains the domain interfaces shared by the namespace shell
// and the collaborators that feed it keys and render its output.
package nsshell

// Sink is the line-oriented text surface the shell writes to.
// The shell never reads back from it.
type Sink interface {
	// Write appends text at the cursor
	Write(text string)

	// EraseLast removes the last echoed character
	EraseLast()

	// Clear wipes the whole surface
	Clear()
}

// KeyEvent is one decoded key. Raw events carry no text (arrows, function keys, etc.)
// and are ignored by the shell.
type KeyEvent struct {
	Rune rune
	Raw  bool
}

// Key returns a text KeyEvent for r
func Key(r rune) KeyEvent {
	return KeyEvent{Rune: r}
}

// KeyHandler accepts decoded keys one at a time.
type KeyHandler interface {
	HandleKey(ev KeyEvent)
}
