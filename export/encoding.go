package export

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Fixed little-endian layout, identical for every variant:
//
//	[0:4]   tag (int32)
//	scalar: [4:8] value, [8:16] timestamp
//	vector: [4:44] ten values, [44:52] timestamp
//	text:   [4:25] zero terminated content
//
// Bytes past the active variant are written as zero and ignored on decode.
const (
	tagSize       = 4
	floatSize     = 4
	timestampSize = 8

	payloadOffset = tagSize

	scalarValueOffset     = payloadOffset
	scalarTimestampOffset = scalarValueOffset + floatSize

	vectorValuesOffset    = payloadOffset
	vectorTimestampOffset = vectorValuesOffset + VectorLen*floatSize

	textOffset = payloadOffset

	// RecordSize is the encoded size of every record.
	RecordSize = vectorTimestampOffset + timestampSize
)

var byteOrder = binary.LittleEndian

// Encode writes rec into the first RecordSize bytes of dst.
func Encode(dst []byte, rec Record) error {
	if len(dst) < RecordSize {
		return errors.Wrapf(ErrShortBuffer, "have %d, need %d", len(dst), RecordSize)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	dst = dst[:RecordSize]
	clear(dst)

	byteOrder.PutUint32(dst[0:tagSize], uint32(rec.Kind))

	switch p := rec.Payload.(type) {
	case Scalar:
		byteOrder.PutUint32(dst[scalarValueOffset:], math.Float32bits(p.Value))
		byteOrder.PutUint64(dst[scalarTimestampOffset:], uint64(p.Timestamp))
	case Vector:
		for i, v := range p.Values {
			byteOrder.PutUint32(dst[vectorValuesOffset+i*floatSize:], math.Float32bits(v))
		}
		byteOrder.PutUint64(dst[vectorTimestampOffset:], uint64(p.Timestamp))
	case Text:
		copy(dst[textOffset:textOffset+TextCap], p.Buf[:])
	}

	return nil
}

// AppendRecord appends the encoding of rec to dst.
func AppendRecord(dst []byte, rec Record) ([]byte, error) {
	n := len(dst)
	dst = append(dst, make([]byte, RecordSize)...)

	if err := Encode(dst[n:], rec); err != nil {
		return dst[:n], err
	}

	return dst, nil
}

// Decode reads one record from the first RecordSize bytes of src.
func Decode(src []byte) (Record, error) {
	if len(src) < RecordSize {
		return Record{}, errors.Wrapf(ErrShortBuffer, "have %d, need %d", len(src), RecordSize)
	}

	kind := Kind(int32(byteOrder.Uint32(src[0:tagSize])))

	switch kind {
	case KindScalar:
		return Record{Kind: kind, Payload: Scalar{
			Value:     math.Float32frombits(byteOrder.Uint32(src[scalarValueOffset:])),
			Timestamp: int64(byteOrder.Uint64(src[scalarTimestampOffset:])),
		}}, nil
	case KindVector:
		var v Vector
		for i := range v.Values {
			v.Values[i] = math.Float32frombits(byteOrder.Uint32(src[vectorValuesOffset+i*floatSize:]))
		}
		v.Timestamp = int64(byteOrder.Uint64(src[vectorTimestampOffset:]))
		return Record{Kind: kind, Payload: v}, nil
	case KindText:
		var t Text
		copy(t.Buf[:], src[textOffset:textOffset+TextCap])
		if !t.terminated() {
			return Record{}, ErrUnterminated
		}
		return Record{Kind: kind, Payload: t}, nil
	default:
		return Record{}, errors.Wrapf(ErrUnknownKind, "tag %d", int32(kind))
	}
}

// DecodeExpect decodes src and rejects a record whose tag is not want.
func DecodeExpect(src []byte, want Kind) (Record, error) {
	rec, err := Decode(src)
	if err != nil {
		return Record{}, err
	}
	if rec.Kind != want {
		return Record{}, errors.Wrapf(ErrKindMismatch, "expected %s, got %s", want, rec.Kind)
	}
	return rec, nil
}
