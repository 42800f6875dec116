// Package shell turns a stream of keystrokes into namespace commands.
package shell

import (
	"errors"
	"sync"

	"github.com/brettbedarf/nsshell"
	"github.com/brettbedarf/nsshell/config"
	"github.com/brettbedarf/nsshell/internal/util"
	"github.com/brettbedarf/nsshell/namespace"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Control bytes with a meaning of their own. Every other byte below 0x20 is ignored.
const (
	keyBackspace = 8
	keyDelete    = 127
	keyNewline   = '\n'
)

// Shell is one interactive session: the namespace, the current directory and the
// line being typed. A single mutex is held for the full processing of each key,
// so keys may be delivered from any goroutine.
type Shell struct {
	mu      sync.Mutex
	cfg     *config.Config
	ns      *namespace.Namespace
	cwd     namespace.Slot // current directory; only ever set to a live slot
	line    LineBuffer
	sink    nsshell.Sink
	cmds    *commandTable
	cleared bool // set by clear so the next prompt starts at the top
	id      uuid.UUID
	logger  util.Logger
}

var _ nsshell.KeyHandler = (*Shell)(nil)

// New creates a session writing to sink. A nil cfg uses the defaults.
func New(cfg *config.Config, sink nsshell.Sink) *Shell {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	root, err := namespace.ParseName(cfg.RootName)
	if err != nil {
		root = namespace.MustName(namespace.DefaultRootName)
	}

	id := uuid.New()
	s := &Shell{
		cfg:  cfg,
		ns:   namespace.New(root),
		cwd:  namespace.Root,
		sink: sink,
		cmds: newCommandTable(cfg.PrefixDispatch, builtinCommands()...),
		id:   id,
	}
	s.logger = util.GetLogger("shell").With().Str("session", id.String()).Logger()
	s.logger.Debug().Bool("prefixDispatch", cfg.PrefixDispatch).Str("root", root.String()).Msg("Shell created")
	return s
}

// ID returns the session ID
func (s *Shell) ID() uuid.UUID {
	return s.id
}

// Start writes the first prompt.
func (s *Shell) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Write(s.cfg.Prompt)
}

// Cwd returns the current directory slot.
func (s *Shell) Cwd() namespace.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// View runs fn with read access to the namespace under the session lock.
// fn must not retain ns or call back into the Shell.
func (s *Shell) View(fn func(ns *namespace.Namespace, cwd namespace.Slot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ns, s.cwd)
}

// HandleKey accepts one decoded key. Raw keys and runes outside ASCII are dropped.
func (s *Shell) HandleKey(ev nsshell.KeyEvent) {
	if ev.Raw || ev.Rune < 0 || ev.Rune > 0x7f {
		s.logger.Trace().Bool("raw", ev.Raw).Int32("rune", ev.Rune).Msg("Ignoring key")
		return
	}
	s.HandleByte(byte(ev.Rune))
}

// HandleByte accepts one input byte.
func (s *Shell) HandleByte(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case b == keyNewline:
		s.submit()
	case b == keyBackspace || b == keyDelete:
		if s.line.Backspace() && s.cfg.Echo {
			s.sink.EraseLast()
		}
	case b < 0x20:
		s.logger.Trace().Uint8("byte", b).Msg("Ignoring control byte")
	default:
		if err := s.line.Append(b); err != nil {
			s.logger.Warn().Err(err).Int("len", s.line.Len()).Msg("Dropping keystroke")
			return
		}
		if s.cfg.Echo {
			s.sink.Write(string(rune(b)))
		}
	}
}

// submit runs the buffered line and starts a fresh one. Caller holds mu.
func (s *Shell) submit() {
	defer s.prompt()
	defer s.line.Reset()

	if s.line.Len() == 0 {
		return
	}
	cmd, arg, err := Tokenize(s.line.Bytes())
	if err != nil {
		s.report(err, cmd.String(), arg.String())
		return
	}
	s.dispatch(cmd, arg)
}

// dispatch runs cmd against the namespace. Caller holds mu.
func (s *Shell) dispatch(cmd Command, arg Argument) {
	logger := s.logger.With().Str("cmd", cmd.String()).Str("arg", arg.String()).Logger()

	c, ok := s.cmds.match(cmd)
	if !ok {
		logger.Debug().Bool("truncated", cmd.Truncated).Msg("Unsupported command")
		s.report(ErrUnsupportedCommand, cmd.String(), arg.String())
		return
	}
	logger.Trace().Str("matched", c.Name).Msg("Dispatching")
	if err := c.run(s, arg); err != nil {
		logger.Debug().Err(err).Msg("Command failed")
		s.report(err, cmd.String(), arg.String())
		return
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		if err := s.ns.Check(); err != nil {
			logger.Error().Err(err).Msg("Namespace invariant broken")
		}
	}
}

// report renders err on the sink. Caller holds mu.
func (s *Shell) report(err error, cmd, arg string) {
	name := arg
	var nsErr *namespace.Error
	if errors.As(err, &nsErr) {
		name = nsErr.Name
	}
	s.println(errorMessage(err, cmd, name))
}

func (s *Shell) println(text string) {
	s.sink.Write("\n" + text)
}

func (s *Shell) prompt() {
	if s.cleared {
		s.cleared = false
		s.sink.Write(s.cfg.Prompt)
		return
	}
	s.sink.Write("\n" + s.cfg.Prompt)
}
