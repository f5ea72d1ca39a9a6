package store_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/metrics"
	"github.com/Clark-Hu/movierank/internal/store"
	"github.com/Clark-Hu/movierank/internal/store/storetest"
)

func TestWithTxAndMigrate(t *testing.T) {
	pool := storetest.NewPool(t, "movies_test_store", 44000)
	ctx := context.Background()

	if err := store.Migrate(ctx, pool); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}

	var avg float64
	if err := pool.QueryRow(ctx, `SELECT movie_average(ARRAY[4,5,3]::float8[])`).Scan(&avg); err != nil {
		t.Fatalf("movie_average: %v", err)
	}
	if avg != 4.0 {
		t.Fatalf("movie_average = %v, want 4.0", avg)
	}
	if err := pool.QueryRow(ctx, `SELECT movie_average('{}'::float8[])`).Scan(&avg); err != nil {
		t.Fatalf("movie_average empty: %v", err)
	}
	if avg != 0 {
		t.Fatalf("movie_average(empty) = %v, want 0", avg)
	}

	insert := `INSERT INTO movies (title, poster, description, release_date, genre) VALUES ($1,'p','d','r','g')`
	boom := errors.New("boom")
	err := store.WithTx(ctx, pool, func(ctx context.Context, tx store.DBTX) error {
		if _, err := tx.Exec(ctx, insert, "rolled back"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	err = store.WithTx(ctx, pool, func(ctx context.Context, tx store.DBTX) error {
		_, err := tx.Exec(ctx, insert, "committed")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx commit: %v", err)
	}

	var titles []string
	rows, err := pool.Query(ctx, `SELECT title FROM movies ORDER BY title`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			t.Fatalf("scan: %v", err)
		}
		titles = append(titles, title)
	}
	if len(titles) != 1 || titles[0] != "committed" {
		t.Fatalf("titles = %v, want [committed]", titles)
	}
}

func TestStoreStatsFeedPoolGauges(t *testing.T) {
	pool := storetest.NewPool(t, "movies_test_store_stats", 46000)
	ctx := context.Background()

	st, err := store.New(ctx, pool.Config().ConnString(), store.Options{
		MaxConns:               3,
		ConnTimeout:            5 * time.Second,
		StatementCacheCapacity: -1,
		Logger:                 zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	if err := st.HealthCheck(ctx); err != nil {
		t.Fatalf("health check: %v", err)
	}

	m := metrics.New()
	m.ObservePool(st.Stats)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "movierank_db_pool_max_conns 3") {
		t.Fatalf("max conns gauge missing:\n%s", body)
	}
	if strings.Contains(body, "movierank_db_pool_total_conns 0\n") {
		t.Fatalf("total conns should count the pinged connection:\n%s", body)
	}
}
