package export

import "time"

// Clock supplies the wall-clock time stamped on Scalar and Vector records.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// ValueGenerator yields Scalar records, cycling through the numeric table.
// A generator must not be shared between concurrent runs.
type ValueGenerator struct {
	clock Clock
	index int
}

func NewValueGenerator(clock Clock) *ValueGenerator {
	if clock == nil {
		clock = systemClock
	}
	return &ValueGenerator{clock: clock}
}

func (g *ValueGenerator) Next() Scalar {
	s := Scalar{
		Value:     values[g.index],
		Timestamp: g.clock().Unix(),
	}
	g.index = (g.index + 1) % len(values)
	return s
}

// Index is the rotation index used by the next call to Next.
func (g *ValueGenerator) Index() int { return g.index }

func (g *ValueGenerator) Reset() { g.index = 0 }

// MultiValueGenerator yields Vector records holding the whole numeric table.
type MultiValueGenerator struct {
	clock Clock
}

func NewMultiValueGenerator(clock Clock) *MultiValueGenerator {
	if clock == nil {
		clock = systemClock
	}
	return &MultiValueGenerator{clock: clock}
}

func (g *MultiValueGenerator) Next() Vector {
	return Vector{
		Values:    values,
		Timestamp: g.clock().Unix(),
	}
}

// MessageGenerator yields Text records, cycling through the text table.
// A generator must not be shared between concurrent runs.
type MessageGenerator struct {
	table []string
	index int
}

func NewMessageGenerator() *MessageGenerator {
	return &MessageGenerator{table: messages[:]}
}

func (g *MessageGenerator) Next() Text {
	t := NewText(g.table[g.index])
	g.index = (g.index + 1) % len(g.table)
	return t
}

func (g *MessageGenerator) Index() int { return g.index }

func (g *MessageGenerator) Reset() { g.index = 0 }
