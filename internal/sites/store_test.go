// internal/sites/store_test.go
package sites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

const testCacheTTL = 5 * time.Minute

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func createTestSite() *models.Site {
	return &models.Site{
		ID: "site-1",
		BusinessProfile: models.BusinessProfile{
			BusinessName:     "Maison Lumiere",
			Industry:         "hospitality",
			BrandPersonality: []string{"elegant", "luxury"},
		},
		Sections: []models.SiteSection{
			{ID: "sec-hero", Type: "hero", Order: 0, Variant: 1, IsVisible: true},
			{ID: "sec-contact", Type: "contact", Order: 1, Variant: 1, IsVisible: true},
		},
		UpdatedAt: fixedNow,
	}
}

func siteRows(t *testing.T, site *models.Site) *sqlmock.Rows {
	profile, err := json.Marshal(site.BusinessProfile)
	require.NoError(t, err)
	sections, err := json.Marshal(site.Sections)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "business_profile", "sections", "updated_at"}).
		AddRow(site.ID, profile, sections, site.UpdatedAt)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestStore_GetSite_CacheMissLoadsAndCaches(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, client := setupMiniRedis(t)
	store := NewStore(db, client, testCacheTTL, logger.NewTestLogger(t))

	want := createTestSite()
	mock.ExpectQuery("FROM sites WHERE id = \\$1").
		WithArgs("site-1").
		WillReturnRows(siteRows(t, want))

	site, err := store.GetSite(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, want, site)

	assert.True(t, mr.Exists("site:draft:site-1"))
	assert.Equal(t, testCacheTTL, mr.TTL("site:draft:site-1"))
	assert.NoError(t, mock.ExpectationsWereMet())

	// second read is served from the cache without touching the database
	cached, err := store.GetSite(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, want.Sections, cached.Sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSite_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, redisMock := redismock.NewClientMock()
	store := NewStore(db, redisClient, testCacheTTL, logger.NewTestLogger(t))

	want := createTestSite()
	data, err := json.Marshal(want)
	require.NoError(t, err)
	redisMock.ExpectGet("site:draft:site-1").SetVal(string(data))

	site, err := store.GetSite(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, want.BusinessProfile, site.BusinessProfile)
	assert.Len(t, site.Sections, 2)

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSite_CacheErrorFallsBackToDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, redisMock := redismock.NewClientMock()
	store := NewStore(db, redisClient, testCacheTTL, logger.NewTestLogger(t))

	redisMock.ExpectGet("site:draft:site-1").SetErr(errors.New("redis unavailable"))
	mock.ExpectQuery("FROM sites").
		WithArgs("site-1").
		WillReturnRows(siteRows(t, createTestSite()))

	site, err := store.GetSite(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, "site-1", site.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSite_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM sites").WithArgs("site-1").WillReturnError(sql.ErrNoRows)
			},
			wantCode: apperrors.ErrCodeSiteNotFound,
		},
		{
			name: "query failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM sites").WithArgs("site-1").WillReturnError(errors.New("connection refused"))
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
		{
			name: "corrupt sections column",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM sites").WithArgs("site-1").WillReturnRows(
					sqlmock.NewRows([]string{"id", "business_profile", "sections", "updated_at"}).
						AddRow("site-1", []byte(`{}`), []byte(`{not json`), fixedNow))
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewStore(db, nil, testCacheTTL, logger.NewTestLogger(t))
			tt.setup(mock)

			site, err := store.GetSite(context.Background(), "site-1")
			assert.Nil(t, site)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_SaveSections(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, client := setupMiniRedis(t)
	store := NewStore(db, client, testCacheTTL, logger.NewTestLogger(t))
	store.now = func() time.Time { return fixedNow }

	require.NoError(t, mr.Set("site:draft:site-1", "{}"))

	sections := createTestSite().Sections
	payload, err := json.Marshal(sections)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE sites SET sections").
		WithArgs("site-1", payload, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updatedAt, err := store.SaveSections(context.Background(), "site-1", sections)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, updatedAt)
	assert.False(t, mr.Exists("site:draft:site-1"), "cache entry must be invalidated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSiteForUpdate_IgnoresStaleCacheRefill(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, client := setupMiniRedis(t)
	store := NewStore(db, client, testCacheTTL, logger.NewTestLogger(t))
	store.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	stale := createTestSite()
	saved := createTestSite()
	saved.Sections[0].Variant = 4

	mock.ExpectExec("UPDATE sites SET sections").
		WithArgs("site-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := store.SaveSections(ctx, "site-1", saved.Sections)
	require.NoError(t, err)

	// A reader that loaded the row before the save refills the cache afterwards.
	store.cacheSite(ctx, stale)
	require.True(t, mr.Exists("site:draft:site-1"))

	mock.ExpectQuery("SELECT id, business_profile, sections, updated_at").
		WithArgs("site-1").
		WillReturnRows(siteRows(t, saved))

	site, err := store.GetSiteForUpdate(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, 4, site.Sections[0].Variant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveSections_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "site missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sites").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantCode: apperrors.ErrCodeSiteNotFound,
		},
		{
			name: "write failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sites").WillReturnError(errors.New("disk full"))
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewStore(db, nil, testCacheTTL, logger.NewTestLogger(t))
			tt.setup(mock)

			_, err := store.SaveSections(context.Background(), "site-1", createTestSite().Sections)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
