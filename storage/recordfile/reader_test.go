package recordfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"exportgen/export"
	"exportgen/storage"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/prometheus/tsdb/wlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, records []export.Record) []byte {
	t.Helper()

	var buf []byte
	for _, rec := range records {
		var err error
		buf, err = export.AppendRecord(buf, rec)
		require.NoError(t, err)
	}
	return buf
}

func requireCorruption(t *testing.T, err error, offset int64) *wlog.CorruptionErr {
	t.Helper()

	var cerr *wlog.CorruptionErr
	require.True(t, errors.As(err, &cerr), "expected corruption error, got %v", err)
	assert.Equal(t, offset, cerr.Offset)

	return cerr
}

func TestReaderReadsAll(t *testing.T) {
	records := generate(t, 7)

	r := NewReader(bytes.NewReader(encodeAll(t, records)))

	var got []export.Record
	for r.Next() {
		got = append(got, r.Record())
	}

	require.NoError(t, r.Err())
	assert.Equal(t, records, got)
	assert.Equal(t, 7, r.Index())
}

func TestReaderEmpty(t *testing.T) {
	got, err := ReadAll(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReaderTornRecord(t *testing.T) {
	data := encodeAll(t, generate(t, 3))

	_, err := ReadAll(bytes.NewReader(data[:len(data)-10]))
	require.Error(t, err)

	cerr := requireCorruption(t, err, 2*export.RecordSize)
	assert.True(t, errors.Is(cerr.Err, ErrTornRecord))
}

func TestReaderUnknownKind(t *testing.T) {
	data := encodeAll(t, generate(t, 3))
	binary.LittleEndian.PutUint32(data[export.RecordSize:], 9)

	got, err := ReadAll(bytes.NewReader(data))
	require.Error(t, err)
	assert.Len(t, got, 1)

	cerr := requireCorruption(t, err, export.RecordSize)
	assert.True(t, errors.Is(cerr.Err, export.ErrUnknownKind))
	assert.True(t, errors.Is(cerr.Err, export.ErrCorruptRecord))
}

func TestReaderRoundRobinCheck(t *testing.T) {
	data := encodeAll(t, []export.Record{
		{Kind: export.KindScalar, Payload: export.Scalar{Value: 1}},
		{Kind: export.KindText, Payload: export.NewText("out of place")},
	})

	got, err := ReadAll(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ReadAll(bytes.NewReader(data), WithRoundRobinCheck())
	cerr := requireCorruption(t, err, export.RecordSize)
	assert.True(t, errors.Is(cerr.Err, export.ErrKindMismatch))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device unavailable")
}

func TestReaderIOError(t *testing.T) {
	r := NewReader(failingReader{})

	assert.False(t, r.Next())
	require.Error(t, r.Err())

	var cerr *wlog.CorruptionErr
	assert.False(t, errors.As(r.Err(), &cerr))
	assert.False(t, r.Next())
}

func TestReadRecordAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")

	sink, err := storage.NewFileSink(path)
	require.NoError(t, err)

	records := generate(t, 10)
	_, err = Export(log.NewNopLogger(), nil, sink, records)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	for _, i := range []int{9, 0, 4, 5} {
		rec, err := ReadRecordAt(f, i)
		require.NoError(t, err)
		assert.Equal(t, records[i], rec, "record %d", i)
	}

	_, err = ReadRecordAt(f, 10)
	assert.ErrorIs(t, err, io.EOF)

	_, err = ReadRecordAt(f, -1)
	assert.Error(t, err)

	assert.Equal(t, int64(5*export.RecordSize), Offset(5))
}

func TestReadRecordAtTorn(t *testing.T) {
	data := encodeAll(t, generate(t, 2))

	_, err := ReadRecordAt(bytes.NewReader(data[:export.RecordSize+5]), 1)
	assert.ErrorIs(t, err, ErrTornRecord)
}

func TestReaderErrorsMatchCorruptRecord(t *testing.T) {
	data := encodeAll(t, generate(t, 3))
	binary.LittleEndian.PutUint32(data, 9)

	_, err := ReadAll(bytes.NewReader(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrCorruptRecord)
	assert.ErrorIs(t, err, export.ErrUnknownKind)

	var cerr *CorruptionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, int64(0), cerr.Offset)
	requireCorruption(t, err, 0)

	_, err = ReadRecordAt(bytes.NewReader(data), 0)
	assert.ErrorIs(t, err, export.ErrCorruptRecord)
	requireCorruption(t, err, 0)

	_, err = ReadAll(bytes.NewReader(data[:export.RecordSize-1]))
	assert.ErrorIs(t, err, ErrTornRecord)
	assert.NotErrorIs(t, err, export.ErrCorruptRecord)

	_, err = ReadAll(failingReader{})
	assert.NotErrorIs(t, err, export.ErrCorruptRecord)
}
