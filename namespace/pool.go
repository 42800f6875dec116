package namespace

// DirNode is one record of the directory pool.
// The zero value is not a free slot; use freeDirNode.
type DirNode struct {
	slot       Slot
	name       Name
	parent     Slot
	childCount int
	children   [MaxChildren]Slot // unused entries hold Free
	files      [MaxFiles]Slot    // unused entries hold Free
}

func (d DirNode) Slot() Slot { return d.slot }
func (d DirNode) Name() Name { return d.name }
func (d DirNode) Parent() Slot { return d.parent }
func (d DirNode) ChildCount() int { return d.childCount }

// Children returns a copy of the child link array, Free entries included.
func (d DirNode) Children() [MaxChildren]Slot { return d.children }

// Files returns a copy of the file link array, Free entries included.
func (d DirNode) Files() [MaxFiles]Slot { return d.files }

// IsFree reports whether the record is the free pattern.
func (d DirNode) IsFree() bool { return d.slot == Free }

func freeDirNode() DirNode {
	d := DirNode{slot: Free, parent: Free}
	clearLinks(d.children[:])
	clearLinks(d.files[:])
	return d
}

func newDirNode(slot Slot, name Name, parent Slot) DirNode {
	d := freeDirNode()
	d.slot = slot
	d.name = name
	d.parent = parent
	return d
}

// FileRecord is one record of the file pool.
type FileRecord struct {
	slot      Slot
	name      Name
	owner     Slot
	lineCount int
	content   [FileContentCapacity]byte
}

func (f *FileRecord) Slot() Slot { return f.slot }
func (f *FileRecord) Name() Name { return f.name }
func (f *FileRecord) Owner() Slot { return f.owner }
func (f *FileRecord) LineCount() int { return f.lineCount }
func (f *FileRecord) IsFree() bool { return f.slot == Free }

// Content returns a copy of the raw content buffer.
func (f *FileRecord) Content() [FileContentCapacity]byte { return f.content }

func (f *FileRecord) reset() {
	f.slot = Free
	f.name = Name{}
	f.owner = Free
	f.lineCount = 0
	clear(f.content[:])
}

func clearLinks(links []Slot) {
	for i := range links {
		links[i] = Free
	}
}

// firstFreeLink returns the index of the first Free entry in links or -1.
func firstFreeLink(links []Slot) int {
	for i, s := range links {
		if s == Free {
			return i
		}
	}
	return -1
}

func validSlot(s Slot) bool {
	return s >= 0 && s < PoolCapacity
}

// dirPool is the fixed directory pool. gens[i] counts how many times slot i was freed.
type dirPool struct {
	nodes [PoolCapacity]DirNode
	gens  [PoolCapacity]uint32
}

func (p *dirPool) init() {
	for i := range p.nodes {
		p.nodes[i] = freeDirNode()
	}
}

// allocate returns the first free slot without claiming it.
func (p *dirPool) allocate() (Slot, error) {
	for i := range p.nodes {
		if p.nodes[i].slot == Free {
			return Slot(i), nil
		}
	}
	return Free, ErrPoolExhausted
}

// free resets s to the free pattern. Callers detach s from its parent first.
func (p *dirPool) free(s Slot) {
	p.nodes[s] = freeDirNode()
	p.gens[s]++
}

func (p *dirPool) occupied(s Slot) bool {
	return validSlot(s) && p.nodes[s].slot == s
}

func (p *dirPool) count() int {
	n := 0
	for i := range p.nodes {
		if p.nodes[i].slot != Free {
			n++
		}
	}
	return n
}

type filePool struct {
	records [PoolCapacity]FileRecord
	gens    [PoolCapacity]uint32
}

func (p *filePool) init() {
	for i := range p.records {
		p.records[i].reset()
	}
}

func (p *filePool) allocate() (Slot, error) {
	for i := range p.records {
		if p.records[i].slot == Free {
			return Slot(i), nil
		}
	}
	return Free, ErrPoolExhausted
}

func (p *filePool) free(s Slot) {
	p.records[s].reset()
	p.gens[s]++
}

func (p *filePool) occupied(s Slot) bool {
	return validSlot(s) && p.records[s].slot == s
}

func (p *filePool) count() int {
	n := 0
	for i := range p.records {
		if p.records[i].slot != Free {
			n++
		}
	}
	return n
}
