package export

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// MaxRecords bounds a single run so that the sequence and its encoding stay
// well inside addressable memory.
const MaxRecords = 1 << 24

// Observer is notified once per generated record, after it was appended.
type Observer func(index int, kind Kind)

// LogObserver reports every generated record at debug level.
func LogObserver(logger log.Logger) Observer {
	return func(index int, kind Kind) {
		level.Debug(logger).Log("msg", "record generated", "index", index, "kind", kind)
	}
}

type Option func(*Builder)

func WithClock(clock Clock) Option {
	return func(b *Builder) {
		b.clock = clock
	}
}

func WithObserver(observer Observer) Option {
	return func(b *Builder) {
		b.observer = observer
	}
}

// Builder assembles record sequences, routing position i to a generator by
// i mod 3. Rotation state carries over between Build calls until Reset.
type Builder struct {
	clock    Clock
	observer Observer

	values   *ValueGenerator
	vectors  *MultiValueGenerator
	messages *MessageGenerator
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	b.values = NewValueGenerator(b.clock)
	b.vectors = NewMultiValueGenerator(b.clock)
	b.messages = NewMessageGenerator()

	return b
}

func (b *Builder) Build(n int) ([]Record, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidCount, "count %d", n)
	}
	if n > MaxRecords {
		return nil, errors.Wrapf(ErrResourceExhaustion, "count %d, limit %d", n, MaxRecords)
	}

	records := make([]Record, 0, n)

	for i := 0; i < n; i++ {
		rec := b.next(i)
		records = append(records, rec)

		if b.observer != nil {
			b.observer(i, rec.Kind)
		}
	}

	return records, nil
}

func (b *Builder) next(i int) Record {
	switch ExpectedKind(i) {
	case KindScalar:
		return Record{Kind: KindScalar, Payload: b.values.Next()}
	case KindVector:
		return Record{Kind: KindVector, Payload: b.vectors.Next()}
	default:
		return Record{Kind: KindText, Payload: b.messages.Next()}
	}
}

// Reset starts a new run: both rotation indexes go back to zero.
func (b *Builder) Reset() {
	b.values.Reset()
	b.messages.Reset()
}

// Generate builds n records with freshly created generators.
func Generate(n int, opts ...Option) ([]Record, error) {
	return NewBuilder(opts...).Build(n)
}
