package namespace

// Slot is an index into one of the fixed node pools.
type Slot int

// Pool and record capacities.
const (
	PoolCapacity        = 100
	MaxChildren         = 20
	MaxFiles            = 20
	NameCapacity        = 10
	FileContentCapacity = 80 * 25
)

const (
	// Free marks an unoccupied slot or an empty link; one past the last valid index
	Free Slot = PoolCapacity

	// Root is the directory slot reserved for the root; it is never freed
	Root Slot = 0

	// DefaultRootName is the name given to the root directory
	DefaultRootName = "root"
)
