package files

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectRepository stores files as objects under a key prefix in an
// S3-compatible bucket.
type ObjectRepository struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioClient builds a client for endpoint, which may be "host:port"
// or a URL whose scheme selects TLS.
func NewMinioClient(endpoint, accessKey, secretKey string) (*minio.Client, error) {
	host, secure, err := normaliseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// Plain host:port is local MinIO, no TLS.
	return raw, false, nil
}

// NewObjectRepository fails when the bucket does not exist.
func NewObjectRepository(ctx context.Context, client *minio.Client, bucket, prefix string) (*ObjectRepository, error) {
	o := &ObjectRepository{
		client: client,
		bucket: bucket,
		prefix: normalisePrefix(prefix),
	}
	if err := o.Ping(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func normalisePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func (o *ObjectRepository) Save(ctx context.Context, rawName string, content io.Reader) (StoredFile, error) {
	name := SecureFilename(rawName)
	if name == "" {
		return StoredFile{}, ErrInvalidName
	}

	info, err := o.client.PutObject(ctx, o.bucket, o.prefix+name, content, -1, minio.PutObjectOptions{
		ContentType: contentTypeFor(name),
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return StoredFile{Name: name, Size: info.Size}, nil
}

func (o *ObjectRepository) Files(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		// Cancelling stops the lister goroutine when the caller breaks early.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		objects := o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
			Prefix:    o.prefix,
			Recursive: true,
		})
		for obj := range objects {
			if obj.Err != nil {
				yield("", fmt.Errorf("%w: %w", ErrIOFailure, obj.Err))
				return
			}
			rel := strings.TrimPrefix(obj.Key, o.prefix)
			if rel == "" || strings.HasSuffix(rel, "/") || hidden(rel) || hasHiddenDir(rel) {
				continue
			}
			if !yield(rel, nil) {
				return
			}
		}
	}
}

func hasHiddenDir(rel string) bool {
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if seg == ReservedMarker {
			return true
		}
	}
	return false
}

func (o *ObjectRepository) Fetch(ctx context.Context, relativePath string) (*File, error) {
	rel, err := cleanRelative(relativePath)
	if err != nil {
		return nil, err
	}
	if hidden(rel) || hasHiddenDir(rel) {
		return nil, ErrNotFound
	}

	obj, err := o.client.GetObject(ctx, o.bucket, o.prefix+rel, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NotFound" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	ct := info.ContentType
	if ct == "" {
		ct = contentTypeFor(rel)
	}
	return &File{
		Name:        rel,
		Size:        info.Size,
		ModTime:     info.LastModified,
		ContentType: ct,
		Content:     obj,
	}, nil
}

func (o *ObjectRepository) Ping(ctx context.Context) error {
	exists, err := o.client.BucketExists(ctx, o.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket does not exist: %s", o.bucket)
	}
	return nil
}
