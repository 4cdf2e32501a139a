// Package storage reads and writes the artifact files of a knowledge graph.
package storage

// Provider is the interface for artifact file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to the output root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the output root).
	Write(path string, content []byte) error
}
