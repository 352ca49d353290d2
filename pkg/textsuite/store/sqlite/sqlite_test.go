package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	storetest.Run(t, st)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	want := storetest.Sample(report.New(), "persisted.txt")
	if err := st.SaveReport(ctx, want); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.GetReport(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetReport after reopen: %v", err)
	}
	storetest.Equal(t, got, want)
}

func TestSQLiteConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	b := report.New()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.SaveReport(ctx, storetest.Sample(b, "concurrent.txt"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("SaveReport: %v", err)
		}
	}

	got, err := st.ListReports(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Errorf("Expected 20 reports, got %d", len(got))
	}
}
