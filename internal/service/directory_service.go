package service

import (
	"context"
	"time"

	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

// DirectoryCacheKey is the cache key of the faculty directory.
const DirectoryCacheKey = "faculty:directory"

type directoryRepository interface {
	Directory(ctx context.Context) ([]models.DirectoryEntry, error)
}

// DirectoryService serves the faculty directory through a read-through cache.
type DirectoryService struct {
	repo  directoryRepository
	cache *CacheService
	ttl   time.Duration
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(repo directoryRepository, cache *CacheService, ttl time.Duration) *DirectoryService {
	return &DirectoryService{repo: repo, cache: cache, ttl: ttl}
}

// List returns every account's directory entry.
func (s *DirectoryService) List(ctx context.Context) ([]models.DirectoryEntry, error) {
	var cached []models.DirectoryEntry
	if s.cache.Get(ctx, DirectoryCacheKey, &cached) {
		return cached, nil
	}
	entries, err := s.repo.Directory(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load faculty directory")
	}
	s.cache.Set(ctx, DirectoryCacheKey, entries, s.ttl)
	return entries, nil
}

// Invalidate drops the cached directory after an account change.
func (s *DirectoryService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.cache.Invalidate(ctx, DirectoryCacheKey)
}
