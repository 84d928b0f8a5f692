package export

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Payload is one of Scalar, Vector or Text.
type Payload interface {
	Kind() Kind
	String() string

	payload()
}

type Scalar struct {
	Value     float32
	Timestamp int64
}

func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) payload() {}

func (s Scalar) String() string {
	return fmt.Sprintf("scalar{value=%g timestamp=%d}", s.Value, s.Timestamp)
}

type Vector struct {
	Values    [VectorLen]float32
	Timestamp int64
}

func (Vector) Kind() Kind { return KindVector }
func (Vector) payload() {}

func (v Vector) String() string {
	return fmt.Sprintf("vector{values=%v timestamp=%d}", v.Values, v.Timestamp)
}

// Text holds at most MaxTextLen content bytes followed by a zero byte; the
// remainder of the buffer is zero padded.
type Text struct {
	Buf [TextCap]byte
}

// NewText copies s into a Text, truncating it to MaxTextLen bytes.
func NewText(s string) Text {
	var t Text
	copy(t.Buf[:MaxTextLen], s)
	return t
}

func (Text) Kind() Kind { return KindText }
func (Text) payload() {}

// Content returns the bytes before the first zero byte.
func (t Text) Content() string {
	if i := bytes.IndexByte(t.Buf[:], 0); i >= 0 {
		return string(t.Buf[:i])
	}
	return string(t.Buf[:])
}

func (t Text) String() string {
	return fmt.Sprintf("text{%q}", t.Content())
}

func (t Text) terminated() bool {
	return bytes.IndexByte(t.Buf[:], 0) >= 0
}

// Record is a tagged union over the three payload shapes. Kind must always
// agree with Payload.Kind().
type Record struct {
	Kind    Kind
	Payload Payload
}

func NewRecord(kind Kind, payload Payload) (Record, error) {
	rec := Record{Kind: kind, Payload: payload}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return errors.Wrapf(ErrUnknownKind, "tag %d", int32(r.Kind))
	}
	if r.Payload == nil {
		return errors.Wrapf(ErrKindMismatch, "tag %s has no payload", r.Kind)
	}
	if r.Payload.Kind() != r.Kind {
		return errors.Wrapf(ErrKindMismatch, "tag %s carries %s payload", r.Kind, r.Payload.Kind())
	}
	if t, ok := r.Payload.(Text); ok && !t.terminated() {
		return ErrUnterminated
	}
	return nil
}

func (r Record) Scalar() (Scalar, bool) {
	s, ok := r.Payload.(Scalar)
	return s, ok && r.Kind == KindScalar
}

func (r Record) Vector() (Vector, bool) {
	v, ok := r.Payload.(Vector)
	return v, ok && r.Kind == KindVector
}

func (r Record) Text() (Text, bool) {
	t, ok := r.Payload.(Text)
	return t, ok && r.Kind == KindText
}

func (r Record) String() string {
	if r.Payload == nil {
		return r.Kind.String() + "{}"
	}
	return r.Payload.String()
}
