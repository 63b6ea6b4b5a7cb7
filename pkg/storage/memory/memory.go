// Package memory is an in-process object store for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/feichai0017/exam-solver/pkg/storage/location"
)

const defaultBaseURL = "memory://local"

type Object struct {
	Data        []byte
	ContentType string
}

type Storage struct {
	mu      sync.RWMutex
	bucket  string
	baseURL string
	objects map[string]Object
}

func New(bucket, baseURL string) *Storage {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Storage{
		bucket:  bucket,
		baseURL: baseURL,
		objects: make(map[string]Object),
	}
}

func (s *Storage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return location.Public(s.baseURL, s.bucket, path), nil
}

func (s *Storage) ObjectPath(publicURL string) (string, error) {
	return location.Path(publicURL, s.baseURL, s.bucket)
}

func (s *Storage) Delete(ctx context.Context, publicURL string) error {
	path, err := s.ObjectPath(publicURL)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Get returns the object stored at path.
func (s *Storage) Get(path string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Len reports how many objects are stored.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
