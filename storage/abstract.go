package storage

import "io"

// Sink is the exclusively owned destination of one export. A sink that was
// aborted must not be observable as a complete export.
type Sink interface {
	io.Writer
	Sync() error
	Close() error
	Abort() error
}

type SinkFactory interface {
	Create(name string) (Sink, error)
}
