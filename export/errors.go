package export

import "github.com/pkg/errors"

var (
	ErrInvalidCount       = errors.New("invalid record count")
	ErrResourceExhaustion = errors.New("record count exceeds allocation limit")

	ErrCorruptRecord = errors.New("corrupt record")
	ErrUnknownKind   = &corruptError{msg: "unknown record kind"}
	ErrKindMismatch  = &corruptError{msg: "record kind mismatch"}
	ErrUnterminated  = &corruptError{msg: "text is not null terminated"}
	ErrShortBuffer   = errors.New("buffer shorter than record size")
)

// corruptError is a refinement of ErrCorruptRecord: errors.Is matches both
// the refinement itself and ErrCorruptRecord.
type corruptError struct {
	msg string
}

func (e *corruptError) Error() string {
	return e.msg
}

func (e *corruptError) Is(target error) bool {
	return target == ErrCorruptRecord
}
