package storage

import (
	"context"
	"io"
	"path"
	"sync/atomic"

	"exportgen/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const contentType = "application/octet-stream"

// ObjectPutter is the subset of *minio.Client used by ObjectSink.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

func NewMinioClient(cfg config.Object) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})

	if err != nil {
		return nil, &SinkError{Name: cfg.Endpoint, Err: err}
	}

	return client, nil
}

// ObjectSink streams the export into a single object. The object only
// becomes visible once Close returns without error.
type ObjectSink struct {
	key      string
	pw       *io.PipeWriter
	done     chan error
	finished atomic.Bool
}

type ObjectSinkFactory struct {
	Ctx    context.Context
	Client ObjectPutter
	Bucket string
	Prefix string
}

func (f *ObjectSinkFactory) Create(name string) (Sink, error) {
	ctx := f.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return NewObjectSink(ctx, f.Client, f.Bucket, path.Join(f.Prefix, name)), nil
}

func NewObjectSink(ctx context.Context, client ObjectPutter, bucket, key string) *ObjectSink {
	pr, pw := io.Pipe()

	s := &ObjectSink{
		key:  key,
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := client.PutObject(ctx, bucket, key, pr, -1, minio.PutObjectOptions{ContentType: contentType})
		_ = pr.CloseWithError(err)
		s.done <- err
	}()

	return s
}

func (s *ObjectSink) Key() string {
	return s.key
}

func (s *ObjectSink) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *ObjectSink) Sync() error {
	return nil
}

func (s *ObjectSink) Close() error {
	if !s.finished.CompareAndSwap(false, true) {
		return ErrSinkClosed
	}

	if err := s.pw.Close(); err != nil {
		return err
	}

	return <-s.done
}

func (s *ObjectSink) Abort() error {
	if !s.finished.CompareAndSwap(false, true) {
		return nil
	}

	_ = s.pw.CloseWithError(ErrUploadAborted)
	<-s.done

	return nil
}
