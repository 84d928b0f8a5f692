package recordfile

import (
	"sync"
	"time"

	"exportgen/export"
	"exportgen/storage"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	pageRecords = 630
	pageSize    = pageRecords * export.RecordSize // just under 32KB, always whole records
)

var (
	ErrShortWrite          = errors.New("short write")
	ErrWriterClosed        = errors.New("writer closed")
	ErrWriterAlreadyClosed = errors.New("writer already closed")
)

type page struct {
	alloc   int
	flushed int
	buf     [pageSize]byte
}

func (p *page) full() bool {
	return pageSize-p.alloc < export.RecordSize
}

func (p *page) reset() {
	p.alloc = 0
	p.flushed = 0
}

func (p *page) data() []byte {
	return p.buf[p.flushed:p.alloc]
}

// Writer encodes records back to back into a sink, with no framing between
// them. Any failure is fatal: the sink is aborted and every later call
// returns the same error.
type Writer struct {
	logger  log.Logger
	metrics *WriterMetrics
	sink    storage.Sink

	page    *page
	written int64
	records int

	mutex  sync.Mutex
	closed bool
	err    error
}

type WriterMetrics struct {
	recordsWritten prometheus.Counter
	bytesWritten   prometheus.Counter
	pageFlushes    prometheus.Counter
	writesFailed   prometheus.Counter
	fsyncDuration  prometheus.Summary
}

func NewWriter(logger log.Logger, registerer prometheus.Registerer, sink storage.Sink) *Writer {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Writer{
		logger:  logger,
		metrics: NewWriterMetrics(prometheus.WrapRegistererWithPrefix("exportgen_writer_", registerer)),
		sink:    sink,
		page:    &page{},
	}
}

// NewWriterMetrics builds the writer metrics. Collectors already registered
// with registerer are reused; a nil registerer leaves them unregistered.
func NewWriterMetrics(registerer prometheus.Registerer) *WriterMetrics {
	m := &WriterMetrics{}

	m.recordsWritten = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_written_total",
		Help: "Total number of records accepted by the writer.",
	}))

	m.bytesWritten = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bytes_written_total",
		Help: "Total number of bytes accepted by the sink.",
	}))

	m.pageFlushes = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "page_flushes_total",
		Help: "Total number of page flushes.",
	}))

	m.writesFailed = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "writes_failed_total",
		Help: "Total number of exports that failed.",
	}))

	m.fsyncDuration = register(registerer, prometheus.NewSummary(prometheus.SummaryOpts{
		Name:       "fsync_duration_seconds",
		Help:       "Duration of sink fsync.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}))

	return m
}

func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if registerer == nil {
		return c
	}

	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}

	return c
}

func (w *Writer) Write(records ...export.Record) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	if w.err != nil {
		return w.err
	}

	for _, rec := range records {
		if w.page.full() {
			if err := w.flushPage(); err != nil {
				return w.fail(err)
			}
		}

		if err := export.Encode(w.page.buf[w.page.alloc:], rec); err != nil {
			return w.fail(errors.Wrapf(err, "encode record %d", w.records))
		}

		w.page.alloc += export.RecordSize
		w.records++
		w.metrics.recordsWritten.Inc()
	}

	return nil
}

func (w *Writer) flushPage() error {
	w.metrics.pageFlushes.Inc()

	data := w.page.data()
	n, err := w.sink.Write(data)

	w.page.flushed += n
	w.written += int64(n)
	w.metrics.bytesWritten.Add(float64(n))

	if err == nil && n < len(data) {
		err = ErrShortWrite
	}
	if err != nil {
		return errors.Wrapf(err, "flush page: wrote %d of %d bytes", n, len(data))
	}

	w.page.reset()

	return nil
}

func (w *Writer) fail(err error) error {
	w.err = err
	w.metrics.writesFailed.Inc()

	level.Error(w.logger).Log("msg", "export failed, aborting sink", "err", err, "records", w.records, "written", w.written)

	if aerr := w.sink.Abort(); aerr != nil {
		level.Error(w.logger).Log("msg", "error aborting sink", "err", aerr)
	}

	return err
}

// Close flushes buffered records, syncs and closes the sink. The export is
// complete only if Close returns nil.
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrWriterAlreadyClosed
	}
	w.closed = true

	if w.err != nil {
		return w.err
	}

	if w.page.alloc > w.page.flushed {
		if err := w.flushPage(); err != nil {
			return w.fail(err)
		}
	}

	if err := w.fsync(); err != nil {
		return w.fail(errors.Wrap(err, "sync sink"))
	}

	if err := w.sink.Close(); err != nil {
		return w.fail(errors.Wrap(err, "close sink"))
	}

	return nil
}

func (w *Writer) fsync() error {
	now := time.Now()
	err := w.sink.Sync()

	w.metrics.fsyncDuration.Observe(time.Since(now).Seconds())

	return err
}

// Written returns the number of bytes accepted by the sink so far.
func (w *Writer) Written() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.written
}

// Records returns the number of records accepted so far.
func (w *Writer) Records() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.records
}

// Export writes records to sink in one pass and releases it. It returns the
// number of bytes written, always len(records)*export.RecordSize on success.
func Export(logger log.Logger, registerer prometheus.Registerer, sink storage.Sink, records []export.Record) (int64, error) {
	w := NewWriter(logger, registerer, sink)

	if err := w.Write(records...); err != nil {
		w.Close()
		return w.Written(), err
	}

	if err := w.Close(); err != nil {
		return w.Written(), err
	}

	return w.Written(), nil
}
