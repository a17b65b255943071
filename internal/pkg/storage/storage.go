// Package storage keeps uploaded files, today only profile avatars.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("invalid file path")

type FileStorage interface {
	// Upload writes the file under key and returns the key it was stored at.
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)

	// Delete removes key. Missing files are not an error.
	Delete(ctx context.Context, key string) error

	// URL is the public address of key.
	URL(key string) string

	// Key reverses URL. ok is false for addresses this storage did not issue.
	Key(url string) (key string, ok bool)
}
