// internal/sites/store.go
package sites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/models"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "site:draft:"

// Store reads and writes site drafts in Postgres with a Redis cache-aside in front of reads.
type Store struct {
	db       *sql.DB
	cache    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
	now      func() time.Time
}

// NewStore creates a Store. cache may be nil to disable caching.
func NewStore(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func draftKey(siteID string) string {
	return draftKeyPrefix + siteID
}

// GetSite loads a site draft, serving it from the cache when possible.
func (s *Store) GetSite(ctx context.Context, siteID string) (*models.Site, error) {
	if site, ok := s.cachedSite(ctx, siteID); ok {
		return site, nil
	}

	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	s.cacheSite(ctx, site)
	return site, nil
}

// GetSiteForUpdate loads a site draft straight from Postgres. Writers holding
// the switch lock use it because a concurrent reader may have refilled the
// cache with a row older than the last save.
func (s *Store) GetSiteForUpdate(ctx context.Context, siteID string) (*models.Site, error) {
	return s.loadSite(ctx, siteID)
}

func (s *Store) loadSite(ctx context.Context, siteID string) (*models.Site, error) {
	var (
		site     models.Site
		profile  []byte
		sections []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, business_profile, sections, updated_at
		FROM sites WHERE id = $1`, siteID).
		Scan(&site.ID, &profile, &sections, &site.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewSiteNotFoundError(siteID)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, apperrors.NewQueryTimeoutError("get site")
	}
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("get site", err)
	}

	if err := json.Unmarshal(profile, &site.BusinessProfile); err != nil {
		return nil, apperrors.NewPersistenceFailedError("decode business profile", err)
	}
	if err := json.Unmarshal(sections, &site.Sections); err != nil {
		return nil, apperrors.NewPersistenceFailedError("decode sections", err)
	}
	return &site, nil
}

// SaveSections replaces a site's section list and returns the new update time.
func (s *Store) SaveSections(ctx context.Context, siteID string, sections []models.SiteSection) (time.Time, error) {
	payload, err := json.Marshal(sections)
	if err != nil {
		return time.Time{}, apperrors.NewPersistenceFailedError("encode sections", err)
	}

	updatedAt := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE sites SET sections = $2, updated_at = $3
		WHERE id = $1`, siteID, payload, updatedAt)
	if err != nil {
		return time.Time{}, apperrors.NewPersistenceFailedError("save sections", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, apperrors.NewPersistenceFailedError("save sections", err)
	}
	if affected == 0 {
		return time.Time{}, apperrors.NewSiteNotFoundError(siteID)
	}

	s.invalidate(ctx, siteID)
	return updatedAt, nil
}

func (s *Store) cachedSite(ctx context.Context, siteID string) (*models.Site, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, draftKey(siteID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("site cache read failed", map[string]interface{}{"siteId": siteID, "error": err.Error()})
		}
		return nil, false
	}
	var site models.Site
	if err := json.Unmarshal([]byte(val), &site); err != nil {
		return nil, false
	}
	return &site, true
}

func (s *Store) cacheSite(ctx context.Context, site *models.Site) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(site)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, draftKey(site.ID), data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("site cache write failed", map[string]interface{}{"siteId": site.ID, "error": err.Error()})
	}
}

func (s *Store) invalidate(ctx context.Context, siteID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, draftKey(siteID)).Err(); err != nil {
		s.logger.Warn("site cache invalidation failed", map[string]interface{}{"siteId": siteID, "error": err.Error()})
	}
}
