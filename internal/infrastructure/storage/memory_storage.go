package storage

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// MemoryStorage is used when object storage is disabled. It hands out
// URLs under BaseURL and treats every presigned upload as completed.
type MemoryStorage struct {
	BaseURL string
	TTL     time.Duration

	mu      sync.RWMutex
	objects map[string]bool
}

// NewMemoryStorage creates an in-process backend
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/kyc"
	}
	return &MemoryStorage{
		BaseURL: baseURL,
		TTL:     defaultPresignExpiration,
		objects: make(map[string]bool),
	}
}

func (m *MemoryStorage) presign(method, key string) *PresignedURL {
	expiresAt := time.Now().Add(m.TTL)
	return &PresignedURL{
		URL:       m.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)),
		Method:    method,
		ExpiresAt: expiresAt,
	}
}

// PresignUpload records the object as present and returns a placeholder URL
func (m *MemoryStorage) PresignUpload(_ context.Context, key, _ string) (*PresignedURL, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	m.mu.Lock()
	m.objects[key] = true
	m.mu.Unlock()
	return m.presign(http.MethodPut, key), nil
}

// PresignDownload returns a placeholder URL
func (m *MemoryStorage) PresignDownload(_ context.Context, key string) (*PresignedURL, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	return m.presign(http.MethodGet, key), nil
}

// ObjectExists reports whether an upload was presigned for the key
func (m *MemoryStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key], nil
}

// DeleteObject forgets the key
func (m *MemoryStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

var _ ObjectStorage = (*MemoryStorage)(nil)
