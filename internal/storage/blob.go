// Package storage holds the archive layer for finished-campaign grade
// reports.
package storage

import "io"

// BlobStore persists opaque report blobs under caller-chosen keys.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Exists(key string) (bool, error)
}
