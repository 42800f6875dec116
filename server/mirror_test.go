package server

import (
	"sync"
	"syscall"
	"testing"

	"github.com/brettbedarf/nsshell"
	"github.com/brettbedarf/nsshell/config"
	"github.com/brettbedarf/nsshell/internal/term"
	"github.com/brettbedarf/nsshell/namespace"
	"github.com/brettbedarf/nsshell/shell"
	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Viewer = (*shell.Shell)(nil)

// nsView is a Viewer over a bare namespace, for setups the shell has no command for
type nsView struct {
	mu sync.Mutex
	ns *namespace.Namespace
}

func (v *nsView) View(fn func(ns *namespace.Namespace, cwd namespace.Slot)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.ns, namespace.Root)
}

func newTestShell(t *testing.T) *shell.Shell {
	t.Helper()
	sh := shell.New(config.NewConfig(nil), term.NewScreen())
	sh.Start()
	return sh
}

func runLine(sh *shell.Shell, line string) {
	for _, r := range line + "\n" {
		sh.HandleKey(nsshell.Key(r))
	}
}

func lookup(t *testing.T, m *Mirror, parent uint64, name string) (fuse.EntryOut, fuse.Status) {
	t.Helper()
	var out fuse.EntryOut
	status := m.Lookup(nil, &fuse.InHeader{NodeId: parent}, name, &out)
	return out, status
}

func getAttr(m *Mirror, ino uint64) (fuse.AttrOut, fuse.Status) {
	var out fuse.AttrOut
	status := m.GetAttr(nil, &fuse.GetAttrIn{InHeader: fuse.InHeader{NodeId: ino}}, &out)
	return out, status
}

func TestIno_RoundTrip(t *testing.T) {
	t.Parallel()

	root := encodeIno(kindDir, namespace.Ref{Slot: namespace.Root})
	assert.Equal(t, uint64(fuse.FUSE_ROOT_ID), root)

	tests := []struct {
		kind entryKind
		ref  namespace.Ref
	}{
		{kindDir, namespace.Ref{Slot: 0, Gen: 0}},
		{kindDir, namespace.Ref{Slot: 99, Gen: 7}},
		{kindFile, namespace.Ref{Slot: 0, Gen: 0}},
		{kindFile, namespace.Ref{Slot: 42, Gen: 1 << 20}},
	}
	seen := map[uint64]bool{}
	for _, tt := range tests {
		ino := encodeIno(tt.kind, tt.ref)
		assert.False(t, seen[ino], "inode numbers are unique")
		seen[ino] = true

		kind, ref, ok := decodeIno(ino)
		require.True(t, ok)
		assert.Equal(t, tt.kind, kind)
		assert.Equal(t, tt.ref, ref)
	}

	_, _, ok := decodeIno(0)
	assert.False(t, ok)
}

func TestMirror_Lookup(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir docs")
	m := New(nil, sh, sh.ID())

	out, status := lookup(t, m, fuse.FUSE_ROOT_ID, "docs")
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, uint32(dirMode), out.Attr.Mode)
	assert.Equal(t, uint32(2), out.Attr.Nlink)
	assert.Equal(t, out.NodeId, out.Attr.Ino)
	kind, ref, ok := decodeIno(out.NodeId)
	require.True(t, ok)
	assert.Equal(t, kindDir, kind)
	assert.Equal(t, namespace.Slot(1), ref.Slot)

	_, status = lookup(t, m, fuse.FUSE_ROOT_ID, "nope")
	assert.Equal(t, fuse.ENOENT, status)

	_, status = lookup(t, m, fuse.FUSE_ROOT_ID, "abcdefghijk")
	assert.Equal(t, fuse.Status(syscall.ENAMETOOLONG), status)

	_, status = lookup(t, m, encodeIno(kindDir, namespace.Ref{Slot: 50}), "docs")
	assert.Equal(t, fuse.ENOENT, status)
}

func TestMirror_RootAttr(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir a")
	runLine(sh, "make_dir b")
	m := New(nil, sh, sh.ID())

	out, status := getAttr(m, fuse.FUSE_ROOT_ID)

	require.Equal(t, fuse.OK, status)
	assert.Equal(t, uint64(fuse.FUSE_ROOT_ID), out.Attr.Ino)
	assert.Equal(t, uint32(dirMode), out.Attr.Mode)
	assert.Equal(t, uint32(4), out.Attr.Nlink)
}

// A removed dir's inode stays dead even after its slot is reused
func TestMirror_StaleInode(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir docs")
	m := New(nil, sh, sh.ID())

	first, status := lookup(t, m, fuse.FUSE_ROOT_ID, "docs")
	require.Equal(t, fuse.OK, status)

	runLine(sh, "remove_dir docs")
	_, status = getAttr(m, first.NodeId)
	assert.Equal(t, fuse.ENOENT, status)

	runLine(sh, "make_dir docs")
	_, status = getAttr(m, first.NodeId)
	assert.Equal(t, fuse.ENOENT, status)

	second, status := lookup(t, m, fuse.FUSE_ROOT_ID, "docs")
	require.Equal(t, fuse.OK, status)
	assert.NotEqual(t, first.NodeId, second.NodeId)
	assert.Equal(t, first.Generation+1, second.Generation)
}

func TestListEntries(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir a")
	runLine(sh, "make_dir b")
	runLine(sh, "change_dir a")
	runLine(sh, "make_dir c")

	sh.View(func(ns *namespace.Namespace, cwd namespace.Slot) {
		root := listEntries(ns, namespace.Root)
		names := make([]string, 0, len(root))
		for _, e := range root {
			names = append(names, e.Name)
			assert.Equal(t, uint32(dirMode), e.Mode)
		}
		assert.Equal(t, []string{".", "..", "a", "b"}, names)
		assert.Equal(t, uint64(fuse.FUSE_ROOT_ID), root[0].Ino)
		assert.Equal(t, uint64(fuse.FUSE_ROOT_ID), root[1].Ino)

		sub := listEntries(ns, cwd)
		require.Len(t, sub, 3)
		assert.Equal(t, root[2].Ino, sub[0].Ino)
		assert.Equal(t, uint64(fuse.FUSE_ROOT_ID), sub[1].Ino)
		assert.Equal(t, "c", sub[2].Name)
	})
}

func TestMirror_ReadDir(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir a")
	m := New(nil, sh, sh.ID())

	list := fuse.NewDirEntryList(make([]byte, 4096), 0)
	in := &fuse.ReadIn{InHeader: fuse.InHeader{NodeId: fuse.FUSE_ROOT_ID}}
	assert.Equal(t, fuse.OK, m.ReadDir(nil, in, list))

	in = &fuse.ReadIn{InHeader: fuse.InHeader{NodeId: encodeIno(kindDir, namespace.Ref{Slot: 9})}}
	assert.Equal(t, fuse.ENOENT, m.ReadDir(nil, in, list))
}

func TestMirror_Files(t *testing.T) {
	t.Parallel()

	ns := namespace.New(namespace.MustName("root"))
	_, err := ns.CreateFile(namespace.Root, []byte("readme"))
	require.NoError(t, err)
	_, err = ns.Mkdir(namespace.Root, []byte("docs"))
	require.NoError(t, err)
	m := New(nil, &nsView{ns: ns}, uuid.New())

	file, status := lookup(t, m, fuse.FUSE_ROOT_ID, "readme")
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, uint32(fileMode), file.Attr.Mode)
	assert.Equal(t, uint64(0), file.Attr.Size)
	dir, status := lookup(t, m, fuse.FUSE_ROOT_ID, "docs")
	require.Equal(t, fuse.OK, status)

	open := func(ino uint64, flags uint32) fuse.Status {
		return m.Open(nil, &fuse.OpenIn{InHeader: fuse.InHeader{NodeId: ino}, Flags: flags}, &fuse.OpenOut{})
	}
	assert.Equal(t, fuse.OK, open(file.NodeId, syscall.O_RDONLY))
	assert.Equal(t, fuse.Status(syscall.EROFS), open(file.NodeId, syscall.O_RDWR))
	assert.Equal(t, fuse.Status(syscall.EROFS), open(file.NodeId, syscall.O_WRONLY))
	assert.Equal(t, fuse.Status(syscall.EISDIR), open(dir.NodeId, syscall.O_RDONLY))

	openDir := func(ino uint64) fuse.Status {
		return m.OpenDir(nil, &fuse.OpenIn{InHeader: fuse.InHeader{NodeId: ino}}, &fuse.OpenOut{})
	}
	assert.Equal(t, fuse.OK, openDir(dir.NodeId))
	assert.Equal(t, fuse.ENOTDIR, openDir(file.NodeId))

	res, status := m.Read(nil, &fuse.ReadIn{InHeader: fuse.InHeader{NodeId: file.NodeId}}, make([]byte, 64))
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, 0, res.Size())

	_, status = m.Read(nil, &fuse.ReadIn{InHeader: fuse.InHeader{NodeId: dir.NodeId}}, make([]byte, 64))
	assert.Equal(t, fuse.ENOENT, status)

	var entries []fuse.DirEntry
	(&nsView{ns: ns}).View(func(ns *namespace.Namespace, _ namespace.Slot) {
		entries = listEntries(ns, namespace.Root)
	})
	require.Len(t, entries, 4)
	assert.Equal(t, "docs", entries[2].Name)
	assert.Equal(t, "readme", entries[3].Name)
	assert.Equal(t, uint32(fileMode), entries[3].Mode)
}

func TestMirror_Access(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	m := New(nil, sh, sh.ID())

	access := func(ino uint64, mask uint32) fuse.Status {
		return m.Access(nil, &fuse.AccessIn{InHeader: fuse.InHeader{NodeId: ino}, Mask: mask})
	}
	assert.Equal(t, fuse.OK, access(fuse.FUSE_ROOT_ID, 4|1))
	assert.Equal(t, fuse.Status(syscall.EROFS), access(fuse.FUSE_ROOT_ID, 2))
	assert.Equal(t, fuse.ENOENT, access(encodeIno(kindDir, namespace.Ref{Slot: 3}), 4))
}

func TestMirror_StatFs(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t)
	runLine(sh, "make_dir a")
	m := New(nil, sh, sh.ID())

	var out fuse.StatfsOut
	require.Equal(t, fuse.OK, m.StatFs(nil, &fuse.InHeader{}, &out))

	assert.Equal(t, uint64(2*namespace.PoolCapacity), out.Files)
	assert.Equal(t, uint64(2*namespace.PoolCapacity-2), out.Ffree)
	assert.Equal(t, uint32(namespace.NameCapacity), out.NameLen)
}

func TestMirror_FsName(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("12345678-9abc-def0-1234-56789abcdef0")

	m := New(nil, &nsView{ns: namespace.New(namespace.MustName("root"))}, id)
	assert.Equal(t, "nsshell-12345678", m.FsName())

	name := "custom"
	cfg := config.NewConfig(&config.ConfigOverride{FsName: &name})
	m = New(cfg, &nsView{ns: namespace.New(namespace.MustName("root"))}, id)
	assert.Equal(t, "custom", m.FsName())
	assert.NoError(t, m.Unmount())
}
