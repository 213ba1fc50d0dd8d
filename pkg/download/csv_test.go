package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

func newCSVEngine() *engine.Engine {
	return engine.New(http.DefaultClient, nil, nil)
}

func drainAll(t *testing.T, it *CSVIterator) []map[string]string {
	t.Helper()
	var rows []map[string]string
	for {
		row, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestCSVDownloadsAndIteratesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,name\n1,alpha\n2,beta\n"))
	}))
	defer srv.Close()

	eng := newCSVEngine()
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: srv.URL},
		Retry:   retry.Config{Tries: 1, Delay: 0},
		Shape:   CSVRows{},
		TempDir: t.TempDir(),
	}

	it, err := CSV(context.Background(), eng, job)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	defer it.Close()

	rows := drainAll(t, it)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["id"] != "1" || rows[0]["name"] != "alpha" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1]["id"] != "2" || rows[1]["name"] != "beta" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestCSVSkipLastRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,name\n1,alpha\n2,beta\n3,gamma\n"))
	}))
	defer srv.Close()

	eng := newCSVEngine()
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: srv.URL},
		Retry:   retry.Config{Tries: 1, Delay: 0},
		Shape:   CSVRows{SkipLastRow: true},
		TempDir: t.TempDir(),
	}

	it, err := CSV(context.Background(), eng, job)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	defer it.Close()

	rows := drainAll(t, it)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (last row skipped)", len(rows))
	}
	if rows[1]["id"] != "2" {
		t.Errorf("expected row for id 2 to be the last yielded, got %v", rows[1])
	}
}

func TestCSVHeaderOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	eng := newCSVEngine()
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: srv.URL},
		Retry:   retry.Config{Tries: 1, Delay: 0},
		Shape:   CSVRows{HeaderOverride: []string{"col1", "col2"}},
		TempDir: t.TempDir(),
	}

	it, err := CSV(context.Background(), eng, job)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	defer it.Close()

	if got := it.Header(); got[0] != "col1" || got[1] != "col2" {
		t.Fatalf("Header() = %v, want [col1 col2]", got)
	}

	rows := drainAll(t, it)
	if len(rows) != 1 || rows[0]["col1"] != "1" {
		t.Errorf("rows = %v", rows)
	}
}

func TestCSVUsesDistinctTempNamesForConcurrentJobs(t *testing.T) {
	dir := t.TempDir()
	jobA := Job{TempDir: dir}
	jobB := Job{TempDir: dir}

	pathA, err := tempPath(jobA)
	if err != nil {
		t.Fatalf("tempPath A: %v", err)
	}
	pathB, err := tempPath(jobB)
	if err != nil {
		t.Fatalf("tempPath B: %v", err)
	}
	if pathA == pathB {
		t.Errorf("expected distinct temp paths, got %q twice", pathA)
	}
	if filepath.Dir(pathA) != dir || filepath.Dir(pathB) != dir {
		t.Errorf("expected both paths under %q", dir)
	}
}
