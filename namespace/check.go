package namespace

import "fmt"

// Check walks both pools and returns the first broken linkage invariant, if any.
func (ns *Namespace) Check() error {
	root := &ns.dirs.nodes[Root]
	if root.slot != Root || root.parent != Root {
		return fmt.Errorf("root slot corrupted: slot=%d parent=%d", root.slot, root.parent)
	}

	var dirRefs [PoolCapacity]int
	var fileRefs [PoolCapacity]int
	for i := range ns.dirs.nodes {
		d := &ns.dirs.nodes[i]
		if d.slot == Free {
			if d.childCount != 0 || hasLink(d.children[:]) || hasLink(d.files[:]) {
				return fmt.Errorf("free dir slot %d still holds links", i)
			}
			continue
		}
		if d.slot != Slot(i) {
			return fmt.Errorf("dir slot %d tagged %d", i, d.slot)
		}
		if !ns.dirs.occupied(d.parent) {
			return fmt.Errorf("dir %d has unoccupied parent %d", i, d.parent)
		}

		n := 0
		for _, c := range d.children {
			if c == Free {
				continue
			}
			n++
			if !ns.dirs.occupied(c) {
				return fmt.Errorf("dir %d links unoccupied child %d", i, c)
			}
			if ns.dirs.nodes[c].parent != Slot(i) {
				return fmt.Errorf("child %d of dir %d points at parent %d", c, i, ns.dirs.nodes[c].parent)
			}
			dirRefs[c]++
		}
		if n != d.childCount {
			return fmt.Errorf("dir %d child count %d but %d links", i, d.childCount, n)
		}

		for _, f := range d.files {
			if f == Free {
				continue
			}
			if !ns.files.occupied(f) {
				return fmt.Errorf("dir %d links unoccupied file %d", i, f)
			}
			if ns.files.records[f].owner != Slot(i) {
				return fmt.Errorf("file %d of dir %d owned by %d", f, i, ns.files.records[f].owner)
			}
			fileRefs[f]++
		}
	}

	for i := range ns.dirs.nodes {
		if Slot(i) == Root || ns.dirs.nodes[i].slot == Free {
			if dirRefs[i] != 0 {
				return fmt.Errorf("dir slot %d linked %d times", i, dirRefs[i])
			}
			continue
		}
		if dirRefs[i] != 1 {
			return fmt.Errorf("dir %d linked %d times", i, dirRefs[i])
		}
	}

	for i := range ns.files.records {
		f := &ns.files.records[i]
		if f.slot == Free {
			if fileRefs[i] != 0 {
				return fmt.Errorf("free file slot %d linked %d times", i, fileRefs[i])
			}
			continue
		}
		if f.slot != Slot(i) {
			return fmt.Errorf("file slot %d tagged %d", i, f.slot)
		}
		if fileRefs[i] != 1 {
			return fmt.Errorf("file %d linked %d times", i, fileRefs[i])
		}
	}
	return nil
}
