package storage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/prometheus/tsdb/wlog"
)

// FileSink is a local file opened for writing and truncated on creation.
type FileSink struct {
	wlog.SegmentFile
	path   string
	closed bool
}

type FileSinkFactory struct {
	Dir string
}

func (f *FileSinkFactory) Create(name string) (Sink, error) {
	return NewFileSink(filepath.Join(f.Dir, name))
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, &SinkError{Name: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)

	if err != nil {
		return nil, &SinkError{Name: path, Err: err}
	}

	return &FileSink{
		SegmentFile: f,
		path:        path,
	}, nil
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}

	s.closed = true

	return s.SegmentFile.Close()
}

// Abort closes the file, if still open, and removes it.
func (s *FileSink) Abort() error {
	var cerr error
	if !s.closed {
		s.closed = true
		cerr = s.SegmentFile.Close()
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", s.path)
	}

	if cerr != nil {
		return errors.Wrapf(cerr, "close aborted %s", s.path)
	}

	return nil
}
