package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

type MinIOStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinIOStore sert le bucket via publicBase, ou via l'endpoint MinIO si
// publicBase est vide.
func NewMinIOStore(client *minio.Client, bucket, publicBase string) *MinIOStore {
	if publicBase == "" {
		publicBase = client.EndpointURL().String()
	}
	return &MinIOStore{client: client, bucket: bucket, publicBase: joinURL(publicBase, bucket)}
}

func (s *MinIOStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return ErrBlobExists
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("vérification %s: %w", path, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, path, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("erreur upload MinIO: %w", err)
	}
	return nil
}

func (s *MinIOStore) PublicURL(path string) string {
	return joinURL(s.publicBase, path)
}

func (s *MinIOStore) Delete(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	objects := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		objects <- minio.ObjectInfo{Key: p}
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}
