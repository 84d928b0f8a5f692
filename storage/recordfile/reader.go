package recordfile

import (
	"io"

	"exportgen/export"

	"github.com/pkg/errors"
	"github.com/prometheus/prometheus/tsdb/wlog"
)

var ErrTornRecord = errors.New("last record is torn")

type ReaderOption func(*Reader)

// WithRoundRobinCheck rejects a record whose kind differs from the one the
// builder produces at its position.
func WithRoundRobinCheck() ReaderOption {
	return func(r *Reader) {
		r.roundRobin = true
	}
}

// Reader decodes consecutive fixed size records from a stream.
type Reader struct {
	reader     io.Reader
	buf        [export.RecordSize]byte
	rec        export.Record
	err        error
	total      int64
	index      int
	roundRobin bool
}

func NewReader(reader io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{reader: reader}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	offset := r.total

	n, err := io.ReadFull(r.reader, r.buf[:])
	r.total += int64(n)

	switch {
	case errors.Is(err, io.EOF):
		return false
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.err = corruption(offset, errors.Wrapf(ErrTornRecord, "read %d of %d bytes", n, export.RecordSize))
		return false
	case err != nil:
		r.err = errors.Wrap(err, "read record")
		return false
	}

	var rec export.Record
	if r.roundRobin {
		rec, err = export.DecodeExpect(r.buf[:], export.ExpectedKind(r.index))
	} else {
		rec, err = export.Decode(r.buf[:])
	}

	if err != nil {
		r.err = corruption(offset, errors.Wrapf(err, "record %d", r.index))
		return false
	}

	r.rec = rec
	r.index++

	return true
}

// Record returns the record decoded by the last successful call to Next.
func (r *Reader) Record() export.Record {
	return r.rec
}

// Index is the number of records decoded so far.
func (r *Reader) Index() int {
	return r.index
}

func (r *Reader) Err() error {
	return r.err
}

// CorruptionError locates a corrupt record. It unwraps to the decode error,
// so errors.Is matches export.ErrCorruptRecord and its refinements, and
// errors.As still yields the *wlog.CorruptionErr.
type CorruptionError struct {
	*wlog.CorruptionErr
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func (e *CorruptionError) As(target any) bool {
	if t, ok := target.(**wlog.CorruptionErr); ok {
		*t = e.CorruptionErr
		return true
	}
	return false
}

func corruption(offset int64, err error) error {
	return &CorruptionError{&wlog.CorruptionErr{
		Err:     err,
		Segment: -1,
		Offset:  offset,
	}}
}

// ReadAll decodes every record of r.
func ReadAll(r io.Reader, opts ...ReaderOption) ([]export.Record, error) {
	var records []export.Record

	reader := NewReader(r, opts...)
	for reader.Next() {
		records = append(records, reader.Record())
	}

	return records, reader.Err()
}

// Offset is the byte position of record i.
func Offset(i int) int64 {
	return int64(i) * export.RecordSize
}

// ReadRecordAt decodes record i without reading the records before it.
func ReadRecordAt(r io.ReaderAt, i int) (export.Record, error) {
	if i < 0 {
		return export.Record{}, errors.Errorf("negative record index %d", i)
	}

	var buf [export.RecordSize]byte

	n, err := r.ReadAt(buf[:], Offset(i))
	if n < export.RecordSize {
		if err == nil || errors.Is(err, io.EOF) {
			if n == 0 {
				return export.Record{}, io.EOF
			}
			err = ErrTornRecord
		}
		return export.Record{}, errors.Wrapf(err, "read record %d", i)
	}

	rec, err := export.Decode(buf[:])
	if err != nil {
		return export.Record{}, corruption(Offset(i), errors.Wrapf(err, "record %d", i))
	}

	return rec, nil
}
