package internal

import (
	"context"
	"io"
)

// Repository stores exported artifacts under a key.
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
	// URI describes where key ends up, for logs and command output.
	URI(key string) string
}
