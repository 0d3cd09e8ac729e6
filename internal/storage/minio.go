package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIO struct {
	client *minio.Client
}

var _ Opener = (*MinIO)(nil)

type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func NewMinIO(opts MinIOOptions) (*MinIO, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIO{client: client}, nil
}

// Open devuelve el contenido del objeto. GetObject es perezoso, por eso se
// hace Stat antes para que un objeto inexistente falle aquí y no al leer.
func (m *MinIO) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}

	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}

	return obj, nil
}
