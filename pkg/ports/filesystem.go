package ports

import "io"

// FileSystem abstracts file system operations.
type FileSystem interface {
	// Create opens path for writing, truncating it and creating parent
	// directories as needed.
	Create(path string) (io.WriteCloser, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
