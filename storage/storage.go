package storage

import "io"

// Store is the blob store capability consumed by the screen pipeline and
// repositories. Keys are content-derived and opaque to callers.
type Store interface {
	Put(key string, body io.Reader) error
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	URL(key string) string
}
