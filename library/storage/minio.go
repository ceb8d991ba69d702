package storage

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/minio/minio-go/v7"
)

// Minio stores content in an S3-compatible bucket.
type Minio struct {
	cli    *minio.Client
	bucket string
	prefix string
}

// NewMinio returns an object-storage backed store. prefix may be empty.
func NewMinio(cli *minio.Client, bucket, prefix string) *Minio {
	return &Minio{
		cli:    cli,
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

func (s *Minio) objkey(ref string) string {
	if s.prefix == "" {
		return ref
	}

	return s.prefix + "/" + ref
}

// Put uploads data under a freshly generated object key.
func (s *Minio) Put(ctx context.Context, data []byte) (string, error) {
	ref, err := newContentRef()
	if err != nil {
		return "", errors.WithStack(err)
	}

	_, err = s.cli.PutObject(ctx,
		s.bucket,
		s.objkey(ref),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{},
	)
	if err != nil {
		return "", errors.Wrapf(err, "put object %q", ref)
	}

	return ref, nil
}

// Get downloads the object stored under ref.
func (s *Minio) Get(ctx context.Context, ref string) ([]byte, error) {
	obj, err := s.cli.GetObject(ctx, s.bucket, s.objkey(ref), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %q", ref)
	}
	defer obj.Close() // nolint:errcheck

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.WithStack(ErrNotExists)
		}
		return nil, errors.Wrapf(err, "read object %q", ref)
	}

	return data, nil
}
