package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"docinspect/internal/cache"
	cacheMocks "docinspect/internal/cache/mocks"
	"docinspect/internal/model"
	"docinspect/internal/repository"
	repoMocks "docinspect/internal/repository/mocks"
	"docinspect/internal/storage"
	storeMocks "docinspect/internal/storage/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInfoService_Resolve(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	opts := Options{CacheTTL: time.Minute, PresignExpiry: 10 * time.Minute}

	doc := &model.Document{
		ID:          "doc-1",
		Filename:    "report.pdf",
		StoragePath: "documents/doc-1.pdf",
		Size:        10,
		ContentType: "application/octet-stream",
		Summary:     "quarterly",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, info *model.DocumentInfo)
	}{
		{
			name: "happy path merges object attributes",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "doc-1").Return(doc, nil)
				mStore.On("Stat", ctx, "documents/doc-1.pdf").Return(storage.ObjectInfo{
					Key:          "documents/doc-1.pdf",
					Size:         2048,
					ETag:         "abc",
					ContentType:  "application/pdf",
					LastModified: modified,
				}, nil)
				mStore.On("PresignGet", ctx, "documents/doc-1.pdf", 10*time.Minute).Return("https://minio/doc-1", nil)
				mCache.On("Set", ctx, mock.MatchedBy(func(info *model.DocumentInfo) bool {
					return info.ID == "doc-1" && info.Size == 2048
				}), time.Minute).Return(nil)
			},
			check: func(t *testing.T, info *model.DocumentInfo) {
				assert.Equal(t, "report.pdf", info.DisplayName)
				assert.Equal(t, "application/pdf", info.MimeType)
				assert.Equal(t, int64(2048), info.Size)
				assert.Equal(t, "abc", info.ETag)
				assert.Equal(t, modified, info.LastModified)
				assert.Equal(t, created, info.CreatedAt)
				assert.Equal(t, "quarterly", info.Summary)
				assert.Equal(t, "https://minio/doc-1", info.DownloadURL)
			},
		},
		{
			name: "cache hit skips backends",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(&model.DocumentInfo{ID: "doc-1", DisplayName: "cached.pdf"}, nil)
			},
			check: func(t *testing.T, info *model.DocumentInfo) {
				assert.Equal(t, "cached.pdf", info.DisplayName)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(*repoMocks.MockDocumentRepository, *storeMocks.MockStorage, *cacheMocks.MockCache) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "missing").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "not found - object missing from bucket",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "doc-1").Return(doc, nil)
				mStore.On("Stat", ctx, "documents/doc-1.pdf").Return(storage.ObjectInfo{}, storage.ErrObjectNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "repository error",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(nil, errors.New("redis down"))
				mRepo.On("FindByID", ctx, "doc-1").Return(nil, errors.New("db fail"))
			},
			wantErrMsg: "find document: db fail",
		},
		{
			name: "storage error",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "doc-1").Return(doc, nil)
				mStore.On("Stat", ctx, "documents/doc-1.pdf").Return(storage.ObjectInfo{}, errors.New("timeout"))
			},
			wantErrMsg: "stat object: timeout",
		},
		{
			name: "presign and cache failures are not fatal",
			id:   "doc-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "doc-1").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "doc-1").Return(doc, nil)
				mStore.On("Stat", ctx, "documents/doc-1.pdf").Return(storage.ObjectInfo{Size: 1}, nil)
				mStore.On("PresignGet", ctx, "documents/doc-1.pdf", 10*time.Minute).Return("", errors.New("sign fail"))
				mCache.On("Set", ctx, mock.Anything, time.Minute).Return(errors.New("redis down"))
			},
			check: func(t *testing.T, info *model.DocumentInfo) {
				assert.Empty(t, info.DownloadURL)
				assert.Equal(t, "application/octet-stream", info.MimeType)
				assert.Equal(t, created, info.LastModified)
			},
		},
		{
			name: "undecodable cache entry is evicted and rebuilt",
			id:   "dir-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "dir-1").Return(nil, fmt.Errorf("%w: unexpected end of JSON input", cache.ErrInvalidEntry))
				mCache.On("Delete", ctx, "dir-1").Return(nil).Once()
				mRepo.On("FindByID", ctx, "dir-1").Return(&model.Document{ID: "dir-1", ContentType: model.MimeTypeDirectory}, nil)
				mCache.On("Set", ctx, mock.Anything, time.Minute).Return(nil).Once()
			},
			check: func(t *testing.T, info *model.DocumentInfo) {
				assert.Equal(t, "dir-1", info.ID)
			},
		},
		{
			name: "directories skip the object store",
			id:   "dir-1",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mStore *storeMocks.MockStorage, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "dir-1").Return(nil, cache.ErrCacheMiss)
				mRepo.On("FindByID", ctx, "dir-1").Return(&model.Document{
					ID:          "dir-1",
					Filename:    "Invoices",
					StoragePath: "documents/invoices/",
					ContentType: model.MimeTypeDirectory,
				}, nil)
				mCache.On("Set", ctx, mock.Anything, time.Minute).Return(nil)
			},
			check: func(t *testing.T, info *model.DocumentInfo) {
				assert.True(t, info.IsDirectory())
				assert.Equal(t, "Invoices", info.DisplayName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			mStore := new(storeMocks.MockStorage)
			mCache := new(cacheMocks.MockCache)
			svc := NewInfoService(mRepo, mStore, mCache, opts, zerolog.Nop())

			tt.setupMocks(mRepo, mStore, mCache)

			info, err := svc.Resolve(ctx, tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, info)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Nil(t, info)
			default:
				assert.NoError(t, err)
				if assert.NotNil(t, info) && tt.check != nil {
					tt.check(t, info)
				}
			}

			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
			mCache.AssertExpectations(t)
		})
	}
}

func TestInfoService_Resolve_NoCacheNoPresign(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewInfoService(mRepo, mStore, nil, Options{}, zerolog.Nop())

	mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", StoragePath: "k"}, nil)
	mStore.On("Stat", ctx, "k").Return(storage.ObjectInfo{Size: 5}, nil)

	info, err := svc.Resolve(ctx, "doc-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	mRepo.AssertExpectations(t)
	mStore.AssertExpectations(t)
	mStore.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestInfoService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    bool
		checkRes   func(t *testing.T, res *DocumentListResult)
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{
						Items: []model.Document{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "pagination boundary - zero limit uses default",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewInfoService(mRepo, nil, nil, Options{}, zerolog.Nop())

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestInfoService_CacheTTLNeverOutlivesDownloadURL(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	mStore := new(storeMocks.MockStorage)
	mCache := new(cacheMocks.MockCache)

	mCache.On("Get", ctx, "doc-1").Return(nil, cache.ErrCacheMiss)
	mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", StoragePath: "k"}, nil)
	mStore.On("Stat", ctx, "k").Return(storage.ObjectInfo{Key: "k", Size: 1}, nil)
	mStore.On("PresignGet", ctx, "k", time.Minute).Return("https://minio/k?sig", nil)
	mCache.On("Set", ctx, mock.Anything, time.Minute).Return(nil).Once()

	svc := NewInfoService(mRepo, mStore, mCache, Options{CacheTTL: time.Hour, PresignExpiry: time.Minute}, zerolog.Nop())
	info, err := svc.Resolve(ctx, "doc-1")

	assert.NoError(t, err)
	assert.Equal(t, "https://minio/k?sig", info.DownloadURL)
	mCache.AssertExpectations(t)
}
