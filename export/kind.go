package export

import "strconv"

// Kind is the discriminant stored at the start of every encoded record.
type Kind int32

const (
	KindScalar Kind = iota + 1
	KindVector
	KindText
)

// kindCount is the number of variants, also the round-robin period of the builder.
const kindCount = 3

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindText:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) Valid() bool {
	return k >= KindScalar && k <= KindText
}

// ExpectedKind returns the kind the builder produces at position i.
func ExpectedKind(i int) Kind {
	return Kind(i%kindCount) + KindScalar
}
