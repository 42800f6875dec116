package namespace

// Name is a bounded node name stored zero-padded with an explicit length.
// Two Names are equal iff their significant bytes are equal, so == is safe.
type Name struct {
	b [NameCapacity]byte
	n uint8
}

// NewName validates and copies b into a Name.
func NewName(b []byte) (Name, error) {
	var name Name
	if len(b) == 0 {
		return name, ErrEmptyName
	}
	if len(b) > NameCapacity {
		return name, ErrNameTooLong
	}
	name.n = uint8(copy(name.b[:], b))
	return name, nil
}

// ParseName is NewName for strings.
func ParseName(s string) (Name, error) {
	return NewName([]byte(s))
}

// MustName is like ParseName but panics on an invalid name.
func MustName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic("namespace: invalid name " + s + ": " + err.Error())
	}
	return n
}

func (n Name) Len() int {
	return int(n.n)
}

// Padded returns the full zero-padded field.
func (n Name) Padded() [NameCapacity]byte {
	return n.b
}

func (n Name) Bytes() []byte {
	return n.b[:n.n]
}

func (n Name) String() string {
	return string(n.b[:n.n])
}

// Equal reports whether b is exactly this name.
func (n Name) Equal(b []byte) bool {
	return string(n.b[:n.n]) == string(b)
}
