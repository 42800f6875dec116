// Package server exposes a shell's namespace as a read-only FUSE filesystem.
package server

import (
	"syscall"
	"time"

	"github.com/brettbedarf/nsshell/config"
	"github.com/brettbedarf/nsshell/internal/util"
	"github.com/brettbedarf/nsshell/namespace"
	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Viewer grants locked read access to a namespace; *shell.Shell implements it.
type Viewer interface {
	View(fn func(ns *namespace.Namespace, cwd namespace.Slot))
}

// Kernel cache lifetimes for entries and attributes
const (
	entryTimeout = time.Second
	attrTimeout  = time.Second
)

// Mirror implements the low-level FUSE wire protocol over a live namespace.
// Every request reads through Viewer, so changes made by the shell show up once
// the kernel cache times out. Write requests fall through to the default
// ENOSYS handlers.
// See https://www.man7.org/linux//man-pages/man4/fuse.4.html
type Mirror struct {
	fuse.RawFileSystem
	src     Viewer
	cfg     *config.Config
	session uuid.UUID
	started time.Time
	server  *fuse.Server
	logger  util.Logger
}

// New creates a Mirror of view for the shell session with the given ID.
func New(cfg *config.Config, view Viewer, session uuid.UUID) *Mirror {
	if cfg == nil {
		cfg = config.NewConfig(nil)
	}
	return &Mirror{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		src:           view,
		cfg:           cfg,
		session:       session,
		started:       time.Now(),
		logger:        util.GetLogger("Mirror").With().Str("session", session.String()).Logger(),
	}
}

// FsName is the source name shown in the mount table. The default name is
// suffixed with the session ID so concurrent sessions can be told apart.
func (m *Mirror) FsName() string {
	if m.cfg.FsName == config.DefaultFsName {
		return m.cfg.FsName + "-" + m.session.String()[:8]
	}
	return m.cfg.FsName
}

// Serve mounts the mirror at mountPoint and returns once the mount is live.
func (m *Mirror) Serve(mountPoint string) error {
	opts := m.cfg.MountOptions
	srv, err := fuse.NewServer(m, mountPoint, &fuse.MountOptions{
		Name:               opts.Name,
		FsName:             m.FsName(),
		Debug:              opts.Debug || m.cfg.LogLvl == util.TraceLevel,
		Logger:             util.NewLogLogger("FuseServer", util.DebugLevel),
		DisableReadDirPlus: true,
	})
	if err != nil {
		return err
	}
	m.server = srv

	go srv.Serve()
	if err := srv.WaitMount(); err != nil {
		return err
	}
	m.logger.Info().Str("mountPoint", mountPoint).Str("fsName", m.FsName()).Msg("Mirror mounted")
	return nil
}

// ServeAsync runs Serve in a goroutine and reports its result on the returned channel.
func (m *Mirror) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- m.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Unmount cleanly unmounts the filesystem.
func (m *Mirror) Unmount() error {
	if m.server == nil {
		return nil
	}
	return m.server.Unmount()
}

func (m *Mirror) Init(s *fuse.Server) {
	m.logger.Debug().Msg("FUSE initialized")
	m.server = s
}

func (m *Mirror) OnUnmount() {
	m.logger.Info().Msg("FUSE unmounted")
}

func (m *Mirror) String() string {
	return "nsshell.Mirror"
}

// Access allows reads and execute on every live entry and denies writes.
func (m *Mirror) Access(cancel <-chan struct{}, input *fuse.AccessIn) fuse.Status {
	if input.Mask&2 != 0 { // W_OK
		return fuse.Status(syscall.EROFS)
	}
	var live bool
	m.read(func(ns *namespace.Namespace) {
		_, dirOK := resolveDir(ns, input.NodeId)
		_, fileOK := resolveFile(ns, input.NodeId)
		live = dirOK || fileOK
	})
	if !live {
		return fuse.ENOENT
	}
	return fuse.OK
}

// Lookup finds a child dir or file by name.
func (m *Mirror) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	m.logger.Trace().Uint64("parent", header.NodeId).Str("name", name).Msg("Lookup called")

	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		parent, ok := resolveDir(ns, header.NodeId)
		if !ok {
			return
		}
		var attr fuse.Attr
		attr, status = lookupEntry(ns, parent, name, m.started)
		if status != fuse.OK {
			return
		}
		_, r, _ := decodeIno(attr.Ino)
		out.NodeId = attr.Ino
		out.Generation = uint64(r.Gen)
		out.Attr = attr
	})
	if status != fuse.OK {
		return status
	}
	out.SetEntryTimeout(entryTimeout)
	out.SetAttrTimeout(attrTimeout)
	return fuse.OK
}

// Forget is a no-op: node IDs are derived from slot and generation, so there
// is no registry to release.
func (m *Mirror) Forget(nodeid, nlookup uint64) {
	m.logger.Trace().Uint64("nodeID", nodeid).Uint64("nlookup", nlookup).Msg("Forget called")
}

func (m *Mirror) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		if s, ok := resolveDir(ns, input.NodeId); ok {
			out.Attr = dirAttr(ns, s, m.started)
			status = fuse.OK
			return
		}
		if f, ok := resolveFile(ns, input.NodeId); ok {
			out.Attr = fileAttr(ns, f, m.started)
			status = fuse.OK
		}
	})
	if status == fuse.OK {
		out.SetTimeout(attrTimeout)
	}
	return status
}

func (m *Mirror) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	if input.Flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return fuse.Status(syscall.EROFS)
	}
	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		if _, ok := resolveFile(ns, input.NodeId); ok {
			status = fuse.OK
			return
		}
		if _, ok := resolveDir(ns, input.NodeId); ok {
			status = fuse.Status(syscall.EISDIR)
		}
	})
	return status
}

func (m *Mirror) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		if _, ok := resolveFile(ns, input.NodeId); ok {
			status = fuse.OK
		}
	})
	if status != fuse.OK {
		return nil, status
	}
	return fuse.ReadResultData(nil), fuse.OK
}

func (m *Mirror) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		if _, ok := resolveDir(ns, input.NodeId); ok {
			status = fuse.OK
			return
		}
		if _, ok := resolveFile(ns, input.NodeId); ok {
			status = fuse.ENOTDIR
		}
	})
	return status
}

// ReadDir lists the dir starting at input.Offset. When out fills up the kernel
// calls again with a later offset.
func (m *Mirror) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	m.logger.Trace().Uint64("nodeID", input.NodeId).Uint64("offset", input.Offset).Msg("ReadDir called")

	var entries []fuse.DirEntry
	status := fuse.ENOENT
	m.read(func(ns *namespace.Namespace) {
		if s, ok := resolveDir(ns, input.NodeId); ok {
			entries = listEntries(ns, s)
			status = fuse.OK
		}
	})
	if status != fuse.OK {
		return status
	}

	for i := int(input.Offset); i < len(entries); i++ {
		if !out.AddDirEntry(entries[i]) {
			break
		}
	}
	return fuse.OK
}

// StatFs reports slot usage as inode counts.
func (m *Mirror) StatFs(cancel <-chan struct{}, input *fuse.InHeader, out *fuse.StatfsOut) fuse.Status {
	var stats namespace.Stats
	m.read(func(ns *namespace.Namespace) {
		stats = ns.Stats()
	})
	out.Bsize = 4096
	out.NameLen = namespace.NameCapacity
	out.Files = 2 * namespace.PoolCapacity
	out.Ffree = uint64(2*namespace.PoolCapacity - stats.Dirs - stats.Files)
	return fuse.OK
}

// read runs fn under the shell lock, ignoring the current directory.
func (m *Mirror) read(fn func(ns *namespace.Namespace)) {
	m.src.View(func(ns *namespace.Namespace, _ namespace.Slot) {
		fn(ns)
	})
}
