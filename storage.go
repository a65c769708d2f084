package sradownload

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// IsGoogleStoragePath reports whether path names an object on Google Storage.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// SplitGoogleStoragePath splits gs://bucket/path/to/object into its bucket and
// object name.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("tried to split your google storage path into bucket and object, but got %d parts: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// MaybeOpenFromGoogleStorage opens path for reading. If path starts with gs://,
// the object is streamed from Google Storage using client; otherwise the local
// file is opened.
func MaybeOpenFromGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if !IsGoogleStoragePath(path) {
		return os.Open(ExpandHome(path))
	}

	if client == nil {
		return nil, pfx.Err(fmt.Errorf("%s: no google storage client was configured", path))
	}

	bucketName, objectName, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, err
	}

	rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
	}

	return rdr, nil
}

// MaybeCreateOnGoogleStorage opens path for writing, truncating any existing
// local file. For gs:// paths the object is only committed once the returned
// writer is closed without error.
func MaybeCreateOnGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.WriteCloser, error) {
	if !IsGoogleStoragePath(path) {
		return os.Create(ExpandHome(path))
	}

	if client == nil {
		return nil, pfx.Err(fmt.Errorf("%s: no google storage client was configured", path))
	}

	bucketName, objectName, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, err
	}

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/tab-separated-values"

	return w, nil
}
