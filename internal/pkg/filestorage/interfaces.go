package filestorage

import (
	"context"
	"time"
)

// StoredObject describes an uploaded object
type StoredObject struct {
	Key string // object key, persisted
	URL string // presigned retrieval URL valid for the upload TTL
}

// Stats reports counters for the storage gateway
type Stats struct {
	Configured       bool  `json:"configured"`
	PresignFallbacks int64 `json:"presignFallbacks"`
}

// ObjectStorage stores resume attachments and issues time-limited retrieval URLs
type ObjectStorage interface {
	// Store uploads data under a generated key inside folder
	Store(ctx context.Context, data []byte, originalName, folder, contentType string) (*StoredObject, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error

	// Presign returns a retrieval URL for key valid for ttl
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PresignOrFallback presigns key, returning fallback when key is empty or presigning fails
	PresignOrFallback(ctx context.Context, key, fallback string, ttl time.Duration) string

	// Stats returns gateway counters
	Stats() Stats
}
