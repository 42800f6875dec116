package shell

// Line and token capacities.
const (
	LineCapacity     = 80
	CommandCapacity  = 10
	ArgumentCapacity = 70
)

// Command is the command token of a line: the bytes before the first space,
// at most CommandCapacity of them.
type Command struct {
	b [CommandCapacity]byte
	n uint8
	// Truncated is set when the token ran past CommandCapacity bytes
	Truncated bool
}

func (c Command) Bytes() []byte {
	return c.b[:c.n]
}

func (c Command) String() string {
	return string(c.b[:c.n])
}

func (c Command) Len() int {
	return int(c.n)
}

// HasPrefix reports whether the token begins with lit.
func (c Command) HasPrefix(lit string) bool {
	if len(lit) > int(c.n) {
		return false
	}
	return string(c.b[:len(lit)]) == lit
}

// Argument is everything after the first space of a line, verbatim.
type Argument struct {
	b [ArgumentCapacity]byte
	n uint8
}

func (a Argument) Bytes() []byte {
	return a.b[:a.n]
}

func (a Argument) String() string {
	return string(a.b[:a.n])
}

func (a Argument) Len() int {
	return int(a.n)
}

// Tokenize splits a completed line into its command token and argument.
// The command stops at the first space within its capacity; the argument is every
// byte after the first space in the line, later spaces included.
func Tokenize(line []byte) (Command, Argument, error) {
	var cmd Command
	var arg Argument

	sp := -1
	for i, b := range line {
		if b == ' ' {
			sp = i
			break
		}
	}

	end := len(line)
	if sp >= 0 {
		end = sp
	}
	if end > CommandCapacity {
		end = CommandCapacity
		cmd.Truncated = true
	}
	cmd.n = uint8(copy(cmd.b[:], line[:end]))

	if sp < 0 {
		return cmd, arg, nil
	}
	rest := line[sp+1:]
	if len(rest) > ArgumentCapacity {
		return cmd, arg, ErrArgumentTooLong
	}
	arg.n = uint8(copy(arg.b[:], rest))
	return cmd, arg, nil
}
