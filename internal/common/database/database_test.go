// internal/common/database/database_test.go
package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"site-composer/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sites").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS variant_overrides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_variant_overrides_site").WillReturnResult(sqlmock.NewResult(0, 0))

	pg := &PostgresClient{DB: db}
	require.NoError(t, pg.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MigrateFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sites").WillReturnError(errors.New("permission denied"))

	err = (&PostgresClient{DB: db}).Migrate(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

type esRecorder struct {
	mu       sync.Mutex
	requests []string
}

func newESServer(t *testing.T, existsStatus int) (*httptest.Server, *esRecorder) {
	rec := &esRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(existsStatus)
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			_, _ = w.Write([]byte(`{"tagline":"You Know, for Search"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestElasticsearch_EnsureOverrideIndex_Creates(t *testing.T) {
	srv, rec := newESServer(t, http.StatusNotFound)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	require.NoError(t, es.EnsureOverrideIndex(context.Background(), "variant-overrides"))
	assert.Equal(t, []string{"HEAD /variant-overrides", "PUT /variant-overrides"}, rec.requests)
}

func TestElasticsearch_EnsureOverrideIndex_Exists(t *testing.T) {
	srv, rec := newESServer(t, http.StatusOK)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	require.NoError(t, es.EnsureOverrideIndex(context.Background(), "variant-overrides"))
	assert.Equal(t, []string{"HEAD /variant-overrides"}, rec.requests)
}

func TestElasticsearch_Ping(t *testing.T) {
	srv, _ := newESServer(t, http.StatusOK)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	assert.NoError(t, es.Ping(context.Background()))
}
