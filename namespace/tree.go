package namespace

// Namespace is the directory tree and file table held in two fixed pools.
// Directory slots are linked through parent and child index fields only.
//
// NOTE: Namespace is not safe for concurrent use; the owning shell serializes access.
type Namespace struct {
	dirs  dirPool
	files filePool
}

// Ref names one occupant of a slot. It stops resolving once that occupant is freed,
// even if the slot has been reused since.
type Ref struct {
	Slot Slot
	Gen  uint32
}

// Stats holds pool occupancy counts.
type Stats struct {
	Dirs  int
	Files int
}

// New returns a namespace holding only the root directory.
func New(root Name) *Namespace {
	ns := &Namespace{}
	ns.dirs.init()
	ns.files.init()
	ns.dirs.nodes[Root] = newDirNode(Root, root, Root)
	return ns
}

// Dir returns a snapshot of the directory at s.
func (ns *Namespace) Dir(s Slot) (DirNode, bool) {
	if !ns.dirs.occupied(s) {
		return DirNode{}, false
	}
	return ns.dirs.nodes[s], true
}

// Name returns the name of the directory at s, or the zero Name if s is unoccupied.
func (ns *Namespace) Name(s Slot) Name {
	if !ns.dirs.occupied(s) {
		return Name{}
	}
	return ns.dirs.nodes[s].name
}

// Parent returns the parent of s. The root is its own parent.
func (ns *Namespace) Parent(s Slot) (Slot, error) {
	if !ns.dirs.occupied(s) {
		return Free, ErrInvalidSlot
	}
	return ns.dirs.nodes[s].parent, nil
}

// Generation returns the number of times directory slot s has been freed.
func (ns *Namespace) Generation(s Slot) uint32 {
	if !validSlot(s) {
		return 0
	}
	return ns.dirs.gens[s]
}

// Ref returns a generation-tagged reference to the directory at s.
func (ns *Namespace) Ref(s Slot) (Ref, bool) {
	if !ns.dirs.occupied(s) {
		return Ref{Slot: Free}, false
	}
	return Ref{Slot: s, Gen: ns.dirs.gens[s]}, true
}

// Resolve returns the slot of r if its occupant is still live.
func (ns *Namespace) Resolve(r Ref) (Slot, bool) {
	if !ns.dirs.occupied(r.Slot) || ns.dirs.gens[r.Slot] != r.Gen {
		return Free, false
	}
	return r.Slot, true
}

// Stats returns the number of occupied directory and file slots.
func (ns *Namespace) Stats() Stats {
	return Stats{Dirs: ns.dirs.count(), Files: ns.files.count()}
}

// RangeChildren calls fn for each child of s in child-slot order, skipping Free gaps.
// Iteration stops when fn returns false.
func (ns *Namespace) RangeChildren(s Slot, fn func(child Slot) bool) {
	if !ns.dirs.occupied(s) {
		return
	}
	for _, c := range ns.dirs.nodes[s].children {
		if c == Free {
			continue
		}
		if !fn(c) {
			return
		}
	}
}

// Lookup finds the child of parent named name.
func (ns *Namespace) Lookup(parent Slot, name []byte) (Slot, error) {
	const op = "lookup"
	if _, err := NewName(name); err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(parent) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	child, _ := ns.findChild(parent, name)
	if child == Free {
		return Free, opErr(op, name, ErrNotFound)
	}
	return child, nil
}

// findChild returns the first child of parent named name and its index in the child
// links, or (Free, -1).
func (ns *Namespace) findChild(parent Slot, name []byte) (Slot, int) {
	for i, c := range ns.dirs.nodes[parent].children {
		if c == Free {
			continue
		}
		if ns.dirs.nodes[c].name.Equal(name) {
			return c, i
		}
	}
	return Free, -1
}

// Mkdir creates a directory named name under parent and returns its slot.
// Every precondition is checked before the pools are touched.
func (ns *Namespace) Mkdir(parent Slot, name []byte) (Slot, error) {
	const op = "mkdir"
	n, err := NewName(name)
	if err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(parent) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	slot, err := ns.dirs.allocate()
	if err != nil {
		return Free, opErr(op, name, err)
	}
	p := &ns.dirs.nodes[parent]
	idx := firstFreeLink(p.children[:])
	if idx < 0 {
		return Free, opErr(op, name, ErrChildCapacityExhausted)
	}

	ns.dirs.nodes[slot] = newDirNode(slot, n, parent)
	p.children[idx] = slot
	p.childCount++
	return slot, nil
}

// Chdir resolves the target of a change-directory request from cur.
// A lone "." selects the parent of cur (the root's parent is the root).
// Any other argument must name a direct child of cur.
func (ns *Namespace) Chdir(cur Slot, arg []byte) (Slot, error) {
	const op = "chdir"
	if !ns.dirs.occupied(cur) {
		return Free, opErr(op, arg, ErrInvalidSlot)
	}
	if len(arg) == 1 && arg[0] == '.' {
		return ns.dirs.nodes[cur].parent, nil
	}
	if _, err := NewName(arg); err != nil {
		return Free, opErr(op, arg, err)
	}
	child, _ := ns.findChild(cur, arg)
	if child == Free {
		return Free, opErr(op, arg, ErrNotFound)
	}
	return child, nil
}

// Rmdir removes the childless, fileless directory named name under parent.
// It returns the freed slot.
func (ns *Namespace) Rmdir(parent Slot, name []byte) (Slot, error) {
	const op = "rmdir"
	if _, err := NewName(name); err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(parent) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	target, idx := ns.findChild(parent, name)
	if target == Free {
		return Free, opErr(op, name, ErrNotFound)
	}
	t := &ns.dirs.nodes[target]
	if t.childCount > 0 || hasLink(t.files[:]) {
		return Free, opErr(op, name, ErrNotEmpty)
	}

	p := &ns.dirs.nodes[parent]
	p.children[idx] = Free
	p.childCount--
	ns.dirs.free(target)
	return target, nil
}

func hasLink(links []Slot) bool {
	for _, s := range links {
		if s != Free {
			return true
		}
	}
	return false
}

// Walk visits every directory below s in pre-order, following child-slot order.
// Direct children of s have depth 1.
func (ns *Namespace) Walk(s Slot, fn func(slot Slot, depth int)) {
	if !ns.dirs.occupied(s) {
		return
	}
	ns.walk(s, 1, fn)
}

func (ns *Namespace) walk(s Slot, depth int, fn func(slot Slot, depth int)) {
	for _, c := range ns.dirs.nodes[s].children {
		if c == Free {
			continue
		}
		fn(c, depth)
		ns.walk(c, depth+1, fn)
	}
}
