package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"docinspect/internal/cache"
	"docinspect/internal/logging"
	"docinspect/internal/model"
	"docinspect/internal/repository"
	"docinspect/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// InfoService resolves the metadata shown in the inspector panel.
type InfoService interface {
	// Resolve returns the document info for id, merging the catalogue row with live object attributes.
	Resolve(ctx context.Context, id string) (*model.DocumentInfo, error)

	// List returns catalogued documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)
}

// Options tune an InfoService. Zero values disable the related feature.
type Options struct {
	CacheTTL      time.Duration
	PresignExpiry time.Duration
}

type infoService struct {
	repo  repository.DocumentRepository
	store storage.Storage
	cache cache.Cache
	opts  Options
	log   zerolog.Logger
}

// NewInfoService constructs an InfoService. A nil cache disables caching.
func NewInfoService(repo repository.DocumentRepository, store storage.Storage, c cache.Cache, opts Options, log zerolog.Logger) InfoService {
	if c == nil {
		c = cache.Noop{}
	}
	return &infoService{
		repo:  repo,
		store: store,
		cache: c,
		opts:  opts,
		log:   logging.Component(log, "info_service"),
	}
}

func (s *infoService) Resolve(ctx context.Context, id string) (*model.DocumentInfo, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
	case errors.Is(err, cache.ErrInvalidEntry):
		s.log.Warn().Err(err).Str("event", "cache_entry_evicted").Str("document_id", id).Msg("")
		if err := s.cache.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("event", "cache_delete_failed").Str("document_id", id).Msg("")
		}
	default:
		s.log.Warn().Err(err).Str("event", "cache_get_failed").Str("document_id", id).Msg("")
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	info := model.InfoFromDocument(doc)
	if !info.IsDirectory() {
		obj, err := s.store.Stat(ctx, doc.StoragePath)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("stat object: %w", err)
		}
		overlayObject(info, obj)

		if s.opts.PresignExpiry > 0 {
			u, err := s.store.PresignGet(ctx, doc.StoragePath, s.opts.PresignExpiry)
			if err != nil {
				s.log.Warn().Err(err).Str("event", "presign_failed").Str("document_id", id).Msg("")
			} else {
				info.DownloadURL = u
			}
		}
	}

	if ttl := s.cacheTTL(info); ttl > 0 {
		if err := s.cache.Set(ctx, info, ttl); err != nil {
			s.log.Warn().Err(err).Str("event", "cache_set_failed").Str("document_id", id).Msg("")
		}
	}
	return info, nil
}

// cacheTTL keeps a cached download URL from outliving its signature.
func (s *infoService) cacheTTL(info *model.DocumentInfo) time.Duration {
	ttl := s.opts.CacheTTL
	if info.DownloadURL != "" && ttl > s.opts.PresignExpiry {
		ttl = s.opts.PresignExpiry
	}
	return ttl
}

// overlayObject replaces catalogue values with what the object store reports.
func overlayObject(info *model.DocumentInfo, obj storage.ObjectInfo) {
	info.Size = obj.Size
	info.ETag = obj.ETag
	if obj.ContentType != "" {
		info.MimeType = obj.ContentType
	}
	if !obj.LastModified.IsZero() {
		info.LastModified = obj.LastModified
	}
}

// List returns paginated documents without exposing repository types.
func (s *infoService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}
