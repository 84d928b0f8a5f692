package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket string
	key    string
	opts   minio.PutObjectOptions
	body   bytes.Buffer
}

func (f *fakePutter) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.bucket = bucket
	f.key = object
	f.opts = opts

	n, err := io.Copy(&f.body, reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	return minio.UploadInfo{Bucket: bucket, Key: object, Size: n}, nil
}

func TestObjectSinkUpload(t *testing.T) {
	putter := &fakePutter{}
	f := &ObjectSinkFactory{Client: putter, Bucket: "exports", Prefix: "runs/"}

	s, err := f.Create("data")
	require.NoError(t, err)

	_, err = s.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = s.Write([]byte("object"))
	require.NoError(t, err)
	require.NoError(t, s.Sync())
	require.NoError(t, s.Close())

	assert.Equal(t, "exports", putter.bucket)
	assert.Equal(t, "runs/data", putter.key)
	assert.Equal(t, contentType, putter.opts.ContentType)
	assert.Equal(t, "hello object", putter.body.String())

	assert.ErrorIs(t, s.Close(), ErrSinkClosed)
}

func TestObjectSinkAbort(t *testing.T) {
	putter := &fakePutter{}
	s := NewObjectSink(context.Background(), putter, "exports", "data")

	_, err := s.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, s.Abort())
	require.NoError(t, s.Abort())

	_, err = s.Write([]byte("more"))
	assert.Error(t, err)
}

type failingPutter struct {
	err error
}

func (p failingPutter) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	io.Copy(io.Discard, reader)
	return minio.UploadInfo{}, p.err
}

func TestObjectSinkCloseReportsUploadError(t *testing.T) {
	uploadErr := errors.New("access denied")
	s := NewObjectSink(context.Background(), failingPutter{err: uploadErr}, "exports", "data")

	_, err := s.Write([]byte("payload"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Close(), uploadErr)
	require.NoError(t, s.Abort())
}
