package ports

import (
	"context"
)

// BackgroundRemover defines the contract for a background-removal service.
type BackgroundRemover interface {
	// Remove sends the raw image bytes to the service and returns the
	// processed image bytes.
	Remove(ctx context.Context, image []byte) ([]byte, error)

	// Configured reports whether a non-empty credential is set.
	Configured() bool
}

// Storage defines the contract for reading inputs and persisting outputs.
type Storage interface {
	// InitOutput creates the output directory. It must be idempotent.
	InitOutput(ctx context.Context, dir string) error

	// ReadSource returns the raw bytes of an input image.
	ReadSource(ctx context.Context, path string) ([]byte, error)

	// SaveOutput writes an encoded image, replacing any previous file.
	SaveOutput(ctx context.Context, path string, data []byte) error

	// OutputPath returns the path for an output with the given stem and suffix.
	OutputPath(dir, stem, suffix string) string
}
