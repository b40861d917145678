package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"cloud.google.com/go/storage"
	"github.com/jyothri/ipodphotos/constants"
	"google.golang.org/api/iterator"
)

type GStoragePhotoDbScan struct {
	Bucket string
	// Object may be empty, in which case the bucket is searched for a Photo Database.
	Object    string
	Prefix    string
	ClientKey string
}

func CloudStoragePhotoDb(storageScan GStoragePhotoDbScan) (int, error) {
	if storageScan.Bucket == "" {
		return 0, fmt.Errorf("bucket is required")
	}
	return startPhotoDbScan(photoDbSource{
		scanType:  "google_storage",
		clientKey: storageScan.ClientKey,
		path:      "gs://" + storageScan.Bucket + "/" + storageScan.Object,
		filter:    storageScan.Prefix,
		load: func(ctx context.Context) ([]byte, error) {
			client, err := storage.NewClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to create storage client: %w", err)
			}
			defer client.Close()

			bucket := client.Bucket(storageScan.Bucket)
			object := storageScan.Object
			if object == "" {
				if object, err = findStorageObject(ctx, bucket, storageScan.Prefix); err != nil {
					return nil, err
				}
			}
			return readStorageObject(ctx, bucket, object)
		},
	})
}

func findStorageObject(ctx context.Context, bucket *storage.BucketHandle, prefix string) (string, error) {
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to list objects with prefix '%s': %w", prefix, err)
		}
		if path.Base(attrs.Name) == PhotoDbFileName {
			slog.Info("Found photo database in bucket",
				"object", attrs.Name,
				"size_bytes", attrs.Size,
				"updated", attrs.Updated)
			return attrs.Name, nil
		}
	}
	return "", fmt.Errorf("%w in bucket with prefix '%s'", ErrPhotoDbNotFound, prefix)
}

func readStorageObject(ctx context.Context, bucket *storage.BucketHandle, object string) ([]byte, error) {
	reader, err := bucket.Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", object, err)
	}
	defer reader.Close()
	return readLimited(reader, constants.MaxUploadBytes)
}
