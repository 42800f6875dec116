package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		cmd       string
		truncated bool
		arg       string
	}{
		{"bare", "cur_dir", "cur_dir", false, ""},
		{"with_arg", "make_dir docs", "make_dir", false, "docs"},
		{"arg_keeps_spaces", "make_dir a b  c", "make_dir", false, "a b  c"},
		{"trailing_space", "make_dir ", "make_dir", false, ""},
		{"leading_space", " docs", "", false, "docs"},
		{"exact_capacity", "remove_dir x", "remove_dir", false, "x"},
		{"truncated", "remove_dirX x", "remove_dir", true, "x"},
		{"truncated_no_arg", "abcdefghijklmnop", "abcdefghij", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd, arg, err := Tokenize([]byte(tt.line))

			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd.String())
			assert.Equal(t, len(tt.cmd), cmd.Len())
			assert.Equal(t, tt.truncated, cmd.Truncated)
			assert.Equal(t, tt.arg, arg.String())
			assert.Equal(t, len(tt.arg), arg.Len())
		})
	}
}

func TestTokenize_ArgumentTooLong(t *testing.T) {
	t.Parallel()

	_, arg, err := Tokenize([]byte("make_dir " + strings.Repeat("x", ArgumentCapacity)))
	require.NoError(t, err)
	assert.Equal(t, ArgumentCapacity, arg.Len())

	_, _, err = Tokenize([]byte("make_dir " + strings.Repeat("x", ArgumentCapacity+1)))
	assert.ErrorIs(t, err, ErrArgumentTooLong)
}

func TestCommand_HasPrefix(t *testing.T) {
	t.Parallel()

	cmd, _, err := Tokenize([]byte("cur_dirXXX"))
	require.NoError(t, err)

	assert.True(t, cmd.HasPrefix("cur_dir"))
	assert.True(t, cmd.HasPrefix(""))
	assert.False(t, cmd.HasPrefix("make_dir"))
	assert.False(t, cmd.HasPrefix("cur_dirXXXY"))
}

func TestCommandTable_Match(t *testing.T) {
	t.Parallel()

	tok := func(s string) Command {
		c, _, err := Tokenize([]byte(s))
		require.NoError(t, err)
		return c
	}

	exact := newCommandTable(false, builtinCommands()...)
	prefix := newCommandTable(true, builtinCommands()...)

	c, ok := exact.match(tok("dir_tree"))
	require.True(t, ok)
	assert.Equal(t, CmdDirTree, c.Name)

	_, ok = exact.match(tok("dir_treeX"))
	assert.False(t, ok)
	_, ok = exact.match(tok("remove_dirX"))
	assert.False(t, ok)
	_, ok = exact.match(tok("dir"))
	assert.False(t, ok)

	c, ok = prefix.match(tok("dir_treeX"))
	require.True(t, ok)
	assert.Equal(t, CmdDirTree, c.Name)
	c, ok = prefix.match(tok("clearall"))
	require.True(t, ok)
	assert.Equal(t, CmdClear, c.Name)
	_, ok = prefix.match(tok("dir"))
	assert.False(t, ok)
}

func TestLineBuffer(t *testing.T) {
	t.Parallel()

	var l LineBuffer
	assert.False(t, l.Backspace())

	for i := 0; i < LineCapacity; i++ {
		require.NoError(t, l.Append('a'))
	}
	assert.ErrorIs(t, l.Append('b'), ErrLineFull)
	assert.Equal(t, LineCapacity, l.Len())

	assert.True(t, l.Backspace())
	require.NoError(t, l.Append('z'))
	assert.Equal(t, strings.Repeat("a", LineCapacity-1)+"z", string(l.Bytes()))

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Bytes())
}
