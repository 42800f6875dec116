package namespace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace_CreateFile(t *testing.T) {
	t.Parallel()

	ns := newTestNS()
	docs := mkdir(t, ns, Root, "docs")

	f, err := ns.CreateFile(docs, []byte("readme"))

	require.NoError(t, err)
	rec, ok := ns.File(f)
	require.True(t, ok)
	assert.Equal(t, "readme", rec.Name().String())
	assert.Equal(t, docs, rec.Owner())
	assert.Equal(t, 0, rec.LineCount())
	assert.Equal(t, 1, ns.Stats().Files)

	found, err := ns.LookupFile(docs, []byte("readme"))
	require.NoError(t, err)
	assert.Equal(t, f, found)
	_, err = ns.LookupFile(Root, []byte("readme"))
	assert.ErrorIs(t, err, ErrNotFound)
	requireConsistent(t, ns)
}

func TestNamespace_CreateFile_Capacity(t *testing.T) {
	t.Parallel()

	ns := newTestNS()
	for i := 0; i < MaxFiles; i++ {
		_, err := ns.CreateFile(Root, []byte(fmt.Sprintf("f%d", i)))
		require.NoError(t, err)
	}

	_, err := ns.CreateFile(Root, []byte("extra"))

	assert.ErrorIs(t, err, ErrFileCapacityExhausted)
	assert.Equal(t, MaxFiles, ns.Stats().Files)
	requireConsistent(t, ns)
}

func TestNamespace_RemoveFile(t *testing.T) {
	t.Parallel()

	ns := newTestNS()
	f, err := ns.CreateFile(Root, []byte("a"))
	require.NoError(t, err)
	ref, ok := ns.FileRef(f)
	require.True(t, ok)

	removed, err := ns.RemoveFile(Root, []byte("a"))

	require.NoError(t, err)
	assert.Equal(t, f, removed)
	_, ok = ns.ResolveFile(ref)
	assert.False(t, ok)
	_, ok = ns.File(f)
	assert.False(t, ok)

	var files []Slot
	ns.RangeFiles(Root, func(s Slot) bool {
		files = append(files, s)
		return true
	})
	assert.Empty(t, files)

	_, err = ns.RemoveFile(Root, []byte("a"))
	assert.ErrorIs(t, err, ErrNotFound)
	requireConsistent(t, ns)
}

func TestNamespace_RangeFiles_Stop(t *testing.T) {
	t.Parallel()

	ns := newTestNS()
	for _, n := range []string{"a", "b", "c"} {
		_, err := ns.CreateFile(Root, []byte(n))
		require.NoError(t, err)
	}

	var seen []string
	ns.RangeFiles(Root, func(s Slot) bool {
		rec, _ := ns.File(s)
		seen = append(seen, rec.Name().String())
		return len(seen) < 2
	})

	assert.Equal(t, []string{"a", "b"}, seen)
}
