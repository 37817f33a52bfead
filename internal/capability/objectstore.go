package capability

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"

	// Register every blob provider driver, covering the schema bucket
	// across AWS, GCP, Azure, and local filesystem targets.
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// BucketStore implements ObjectStore against a gocloud.dev/blob bucket.
type BucketStore struct {
	bucket *blob.Bucket
}

// NewObjectStore opens a blob.Bucket for bucketURL (e.g. "s3://my-bucket")
// and returns an ObjectStore backed by it.
func NewObjectStore(ctx context.Context, bucketURL string) (*BucketStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open schema bucket: %w", err)
	}
	return &BucketStore{bucket: bucket}, nil
}

func (b *BucketStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := b.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list schema objects: %w", err)
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

func (b *BucketStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read schema object %s: %w", key, err)
	}
	return data, nil
}

// Close releases the underlying bucket's resources.
func (b *BucketStore) Close() error {
	return b.bucket.Close()
}
