package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/store/storetest"
)

// Set TEXTSUITE_TEST_POSTGRES_DSN to a disposable database to run these.
func openTestStore(t *testing.T) *pgStore {
	t.Helper()
	dsn := os.Getenv("TEXTSUITE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEXTSUITE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	st, err := Open(ctx, dsn, Options{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pg := st.(*pgStore)
	if _, err := pg.db.ExecContext(ctx, "TRUNCATE reports"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { pg.Close() })
	return pg
}

func TestPostgresStore(t *testing.T) {
	storetest.Run(t, openTestStore(t))
}

func TestOpenUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	_, err := Open(context.Background(), "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1", Options{})
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}
