package shell

import (
	"strings"

	"github.com/brettbedarf/nsshell/namespace"
	"github.com/puzpuzpuz/xsync/v4"
)

// Known command names.
const (
	CmdCurDir    = "cur_dir"
	CmdMakeDir   = "make_dir"
	CmdChangeDir = "change_dir"
	CmdRemoveDir = "remove_dir"
	CmdDirTree   = "dir_tree"
	CmdClear     = "clear"
)

// runFunc executes one command. Callers hold the shell lock.
type runFunc func(s *Shell, arg Argument) error

type command struct {
	Name string
	Desc string
	run  runFunc
}

// commandTable keeps the ordered command list used for prefix matching
// and a name index for exact matching.
type commandTable struct {
	ordered []*command
	byName  *xsync.Map[string, *command]
	prefix  bool
}

func newCommandTable(prefix bool, cmds ...*command) *commandTable {
	t := &commandTable{
		ordered: cmds,
		byName:  xsync.NewMap[string, *command](),
		prefix:  prefix,
	}
	for _, c := range cmds {
		t.byName.Store(c.Name, c)
	}
	return t
}

// builtinCommands returns the fixed command set in dispatch order.
func builtinCommands() []*command {
	return []*command{
		{Name: CmdCurDir, Desc: "Print the current directory.", run: runCurDir},
		{Name: CmdMakeDir, Desc: "Create a directory.", run: runMakeDir},
		{Name: CmdChangeDir, Desc: "Enter a child directory, or the parent with \".\".", run: runChangeDir},
		{Name: CmdRemoveDir, Desc: "Remove an empty child directory.", run: runRemoveDir},
		{Name: CmdDirTree, Desc: "Print the tree below the current directory.", run: runDirTree},
		{Name: CmdClear, Desc: "Clear the screen.", run: runClear},
	}
}

// match finds the command for tok. Exact mode needs the whole token to equal a
// command name. Prefix mode takes the first command, in table order, whose name
// the token starts with.
func (t *commandTable) match(tok Command) (*command, bool) {
	if t.prefix {
		for _, c := range t.ordered {
			if tok.HasPrefix(c.Name) {
				return c, true
			}
		}
		return nil, false
	}
	if tok.Truncated {
		return nil, false
	}
	return t.byName.Load(tok.String())
}

func runCurDir(s *Shell, _ Argument) error {
	s.println("/" + s.ns.Name(s.cwd).String())
	return nil
}

func runMakeDir(s *Shell, arg Argument) error {
	slot, err := s.ns.Mkdir(s.cwd, arg.Bytes())
	if err != nil {
		return err
	}
	s.logger.Debug().Int("slot", int(slot)).Str("name", arg.String()).Msg("Created dir")
	s.println(`[Ok] Created new dir "` + s.ns.Name(slot).String() + `"`)
	return nil
}

func runChangeDir(s *Shell, arg Argument) error {
	target, err := s.ns.Chdir(s.cwd, arg.Bytes())
	if err != nil {
		return err
	}
	s.logger.Debug().Int("from", int(s.cwd)).Int("to", int(target)).Msg("Changed dir")
	up := arg.String() == "."
	s.cwd = target
	if !up {
		s.println(`[Ok] Changed current dir to "` + s.ns.Name(target).String() + `"`)
	}
	return nil
}

func runRemoveDir(s *Shell, arg Argument) error {
	slot, err := s.ns.Rmdir(s.cwd, arg.Bytes())
	if err != nil {
		return err
	}
	s.logger.Debug().Int("slot", int(slot)).Str("name", arg.String()).Msg("Removed dir")
	s.println(`[Ok] Directory "` + arg.String() + `" removed`)
	return nil
}

func runDirTree(s *Shell, _ Argument) error {
	s.println("/" + s.ns.Name(s.cwd).String())
	s.ns.Walk(s.cwd, func(slot namespace.Slot, depth int) {
		s.println(strings.Repeat(" ", depth*4) + "/" + s.ns.Name(slot).String())
	})
	return nil
}

func runClear(s *Shell, _ Argument) error {
	s.sink.Clear()
	s.cleared = true
	return nil
}
