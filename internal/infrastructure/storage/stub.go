package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultStubMaxObjects = 64

type stubObject struct {
	data        []byte
	contentType string
	expiresAt   time.Time
}

// StubReportStorage keeps reports in memory when no object store is
// configured. Download links point at the API's report download route;
// objects expire with their link and the oldest are evicted past MaxObjects.
type StubReportStorage struct {
	BaseURL    string
	Expiration time.Duration
	MaxObjects int

	mu      sync.Mutex
	objects map[string]stubObject
	now     func() time.Time
}

// NewStubReportStorage creates a StubReportStorage
func NewStubReportStorage() *StubReportStorage {
	return &StubReportStorage{
		BaseURL:    "/api/v1/inventory/reports",
		Expiration: 15 * time.Minute,
		MaxObjects: defaultStubMaxObjects,
		objects:    make(map[string]stubObject),
		now:        time.Now,
	}
}

func (s *StubReportStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)
	if _, exists := s.objects[key]; !exists {
		for s.MaxObjects > 0 && len(s.objects) >= s.MaxObjects {
			s.evictOldestLocked()
		}
	}
	s.objects[key] = stubObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		expiresAt:   now.Add(s.Expiration),
	}
	return nil
}

// DownloadURL returns the API path of the object. The link expires together
// with the stored object.
func (s *StubReportStorage) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	s.mu.Lock()
	obj, ok := s.objects[key]
	s.mu.Unlock()

	expiresAt := s.now().Add(s.Expiration)
	if ok {
		expiresAt = obj.expiresAt
	}
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + escapeKey(key), expiresAt, nil
}

// Get returns a stored report; ok is false once the object is missing or expired
func (s *StubReportStorage) Get(ctx context.Context, key string) ([]byte, string, bool, error) {
	if key == "" {
		return nil, "", false, ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false, nil
	}
	if !s.now().Before(obj.expiresAt) {
		delete(s.objects, key)
		return nil, "", false, nil
	}
	return append([]byte(nil), obj.data...), obj.contentType, true, nil
}

// Len returns the number of stored objects, expired ones included
func (s *StubReportStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *StubReportStorage) evictExpiredLocked(now time.Time) {
	for key, obj := range s.objects {
		if !now.Before(obj.expiresAt) {
			delete(s.objects, key)
		}
	}
}

func (s *StubReportStorage) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, obj := range s.objects {
		if oldestKey == "" || obj.expiresAt.Before(oldest) {
			oldestKey, oldest = key, obj.expiresAt
		}
	}
	delete(s.objects, oldestKey)
}

// escapeKey escapes each path segment and keeps the separators
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
