// Package storage abre el archivo JSON del catálogo, ya sea local o en un
// bucket compatible con S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const objectScheme = "s3://"

// Opener abre un objeto de un bucket
type Opener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ParseObjectURL separa s3://bucket/key. ok es false si location no es una URL de objeto.
func ParseObjectURL(location string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(location, objectScheme) {
		return "", "", false, nil
	}

	rest := strings.TrimPrefix(location, objectScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || strings.Trim(key, "/") == "" {
		return "", "", true, fmt.Errorf("invalid object url %q, expected s3://bucket/key", location)
	}
	return bucket, key, true, nil
}

// Open abre location. Las URLs s3:// se delegan en objects, que puede ser nil
// si no hay almacenamiento de objetos configurado.
func Open(ctx context.Context, location string, objects Opener) (io.ReadCloser, error) {
	bucket, key, isObject, err := ParseObjectURL(location)
	if err != nil {
		return nil, err
	}

	if !isObject {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		return f, nil
	}

	if objects == nil {
		return nil, fmt.Errorf("object storage is not configured, cannot open %s", location)
	}
	return objects.Open(ctx, bucket, key)
}
