package storage

import "io"

// Disk is the contract every storage driver implements. Product images
// only need write/read/delete and a public URL, so the surface is small.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error
	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error
	// Get returns the file content at path.
	Get(path string) ([]byte, error)
	// Exists reports whether path exists.
	Exists(path string) bool
	// Delete removes path. Deleting a missing path is not an error.
	Delete(path string) error
	// URL returns the public URL for path.
	URL(path string) string
}
