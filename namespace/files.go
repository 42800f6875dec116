package namespace

// Files are tracked in their own pool and linked from the owning directory's file
// slots. No shell command creates or edits them yet; they are managed through this
// API only.

// File returns the file record at s.
func (ns *Namespace) File(s Slot) (*FileRecord, bool) {
	if !ns.files.occupied(s) {
		return nil, false
	}
	rec := ns.files.records[s]
	return &rec, true
}

// FileRef returns a generation-tagged reference to the file at s.
func (ns *Namespace) FileRef(s Slot) (Ref, bool) {
	if !ns.files.occupied(s) {
		return Ref{Slot: Free}, false
	}
	return Ref{Slot: s, Gen: ns.files.gens[s]}, true
}

// ResolveFile returns the slot of r if its file is still live.
func (ns *Namespace) ResolveFile(r Ref) (Slot, bool) {
	if !ns.files.occupied(r.Slot) || ns.files.gens[r.Slot] != r.Gen {
		return Free, false
	}
	return r.Slot, true
}

// RangeFiles calls fn for each file owned by dir in file-slot order.
// Iteration stops when fn returns false.
func (ns *Namespace) RangeFiles(dir Slot, fn func(file Slot) bool) {
	if !ns.dirs.occupied(dir) {
		return
	}
	for _, f := range ns.dirs.nodes[dir].files {
		if f == Free {
			continue
		}
		if !fn(f) {
			return
		}
	}
}

// LookupFile finds the file named name owned by dir.
func (ns *Namespace) LookupFile(dir Slot, name []byte) (Slot, error) {
	const op = "lookup_file"
	if _, err := NewName(name); err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(dir) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	f, _ := ns.findFile(dir, name)
	if f == Free {
		return Free, opErr(op, name, ErrNotFound)
	}
	return f, nil
}

func (ns *Namespace) findFile(dir Slot, name []byte) (Slot, int) {
	for i, f := range ns.dirs.nodes[dir].files {
		if f == Free {
			continue
		}
		if ns.files.records[f].name.Equal(name) {
			return f, i
		}
	}
	return Free, -1
}

// CreateFile claims a file slot named name and links it into dir.
func (ns *Namespace) CreateFile(dir Slot, name []byte) (Slot, error) {
	const op = "create_file"
	n, err := NewName(name)
	if err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(dir) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	slot, err := ns.files.allocate()
	if err != nil {
		return Free, opErr(op, name, err)
	}
	d := &ns.dirs.nodes[dir]
	idx := firstFreeLink(d.files[:])
	if idx < 0 {
		return Free, opErr(op, name, ErrFileCapacityExhausted)
	}

	rec := &ns.files.records[slot]
	rec.slot = slot
	rec.name = n
	rec.owner = dir
	d.files[idx] = slot
	return slot, nil
}

// RemoveFile unlinks the file named name from dir and frees its slot.
func (ns *Namespace) RemoveFile(dir Slot, name []byte) (Slot, error) {
	const op = "remove_file"
	if _, err := NewName(name); err != nil {
		return Free, opErr(op, name, err)
	}
	if !ns.dirs.occupied(dir) {
		return Free, opErr(op, name, ErrInvalidSlot)
	}
	f, idx := ns.findFile(dir, name)
	if f == Free {
		return Free, opErr(op, name, ErrNotFound)
	}
	ns.dirs.nodes[dir].files[idx] = Free
	ns.files.free(f)
	return f, nil
}
