package server

import (
	"os"
	"syscall"
	"time"

	"github.com/brettbedarf/nsshell/namespace"
	"github.com/hanwen/go-fuse/v2/fuse"
)

type entryKind uint64

const (
	kindDir  entryKind = 0
	kindFile entryKind = 1
)

// Permission bits of mirrored entries
const (
	dirMode  = syscall.S_IFDIR | 0o555
	fileMode = syscall.S_IFREG | 0o444
)

// Inode numbers carry the entry kind, slot and slot generation so that no table
// of issued IDs is kept. The root dir (slot 0, generation 0) maps onto
// fuse.FUSE_ROOT_ID. An ID whose slot was freed since it was issued no longer
// resolves.
//
//	ino - 1 = gen<<32 | slot<<1 | kind
func encodeIno(kind entryKind, r namespace.Ref) uint64 {
	return fuse.FUSE_ROOT_ID + (uint64(r.Gen)<<32 | uint64(r.Slot)<<1 | uint64(kind))
}

func decodeIno(ino uint64) (entryKind, namespace.Ref, bool) {
	if ino < fuse.FUSE_ROOT_ID {
		return kindDir, namespace.Ref{Slot: namespace.Free}, false
	}
	v := ino - fuse.FUSE_ROOT_ID
	r := namespace.Ref{
		Slot: namespace.Slot((v & 0xffffffff) >> 1),
		Gen:  uint32(v >> 32),
	}
	return entryKind(v & 1), r, true
}

// resolveDir returns the live dir slot named by ino
func resolveDir(ns *namespace.Namespace, ino uint64) (namespace.Slot, bool) {
	kind, r, ok := decodeIno(ino)
	if !ok || kind != kindDir {
		return namespace.Free, false
	}
	return ns.Resolve(r)
}

// resolveFile returns the live file slot named by ino
func resolveFile(ns *namespace.Namespace, ino uint64) (namespace.Slot, bool) {
	kind, r, ok := decodeIno(ino)
	if !ok || kind != kindFile {
		return namespace.Free, false
	}
	return ns.ResolveFile(r)
}

func dirIno(ns *namespace.Namespace, s namespace.Slot) uint64 {
	r, _ := ns.Ref(s)
	return encodeIno(kindDir, r)
}

func fileIno(ns *namespace.Namespace, s namespace.Slot) uint64 {
	r, _ := ns.FileRef(s)
	return encodeIno(kindFile, r)
}

// newDefaultAttr returns the attributes shared by every mirrored entry.
// NOTE: Mode, Nlink and Size are set by the caller
func newDefaultAttr(ino uint64, ts time.Time) fuse.Attr {
	return fuse.Attr{
		Ino: ino,
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
		Atime:     uint64(ts.Unix()),
		Mtime:     uint64(ts.Unix()),
		Ctime:     uint64(ts.Unix()),
		Atimensec: uint32(ts.Nanosecond()),
		Mtimensec: uint32(ts.Nanosecond()),
		Ctimensec: uint32(ts.Nanosecond()),
		Blksize:   4096,
	}
}

// dirAttr describes the directory at s. Nlink counts "." and each child's "..".
func dirAttr(ns *namespace.Namespace, s namespace.Slot, ts time.Time) fuse.Attr {
	d, _ := ns.Dir(s)
	attr := newDefaultAttr(dirIno(ns, s), ts)
	attr.Mode = dirMode
	attr.Nlink = uint32(2 + d.ChildCount())
	return attr
}

// fileAttr describes the file at s. Mirrored files are always empty.
func fileAttr(ns *namespace.Namespace, s namespace.Slot, ts time.Time) fuse.Attr {
	attr := newDefaultAttr(fileIno(ns, s), ts)
	attr.Mode = fileMode
	attr.Nlink = 1
	return attr
}

// lookupEntry finds name under the dir at parent. Directories shadow files of
// the same name.
func lookupEntry(ns *namespace.Namespace, parent namespace.Slot, name string, ts time.Time) (fuse.Attr, fuse.Status) {
	if len(name) > namespace.NameCapacity {
		return fuse.Attr{}, fuse.Status(syscall.ENAMETOOLONG)
	}
	if child, err := ns.Lookup(parent, []byte(name)); err == nil {
		return dirAttr(ns, child, ts), fuse.OK
	}
	if f, err := ns.LookupFile(parent, []byte(name)); err == nil {
		return fileAttr(ns, f, ts), fuse.OK
	}
	return fuse.Attr{}, fuse.ENOENT
}

// listEntries returns the dirents of the dir at s: ".", "..", child dirs in
// child-slot order, then files.
func listEntries(ns *namespace.Namespace, s namespace.Slot) []fuse.DirEntry {
	parent, _ := ns.Parent(s)
	entries := []fuse.DirEntry{
		{Name: ".", Mode: dirMode, Ino: dirIno(ns, s)},
		{Name: "..", Mode: dirMode, Ino: dirIno(ns, parent)},
	}
	ns.RangeChildren(s, func(c namespace.Slot) bool {
		entries = append(entries, fuse.DirEntry{Name: ns.Name(c).String(), Mode: dirMode, Ino: dirIno(ns, c)})
		return true
	})
	ns.RangeFiles(s, func(f namespace.Slot) bool {
		rec, _ := ns.File(f)
		entries = append(entries, fuse.DirEntry{Name: rec.Name().String(), Mode: fileMode, Ino: fileIno(ns, f)})
		return true
	})
	return entries
}
