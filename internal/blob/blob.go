// Package blob stores uploaded binary payloads and hands back public URLs.
// The relay never touches payload bytes; it only carries the resulting URL.
package blob

import (
	"context"
	"io"
)

// Store persists a binary payload under a name and returns a public URL for
// retrieving it.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
