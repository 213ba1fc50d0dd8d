package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

func TestJSONDownloadsAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"name":"widget"}`))
	}))
	defer srv.Close()

	eng := engine.New(http.DefaultClient, nil, nil)
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: srv.URL},
		Retry:   retry.Config{Tries: 2, Delay: 0},
		Shape:   JSONWhole{},
		TempDir: t.TempDir(),
	}

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := JSON(context.Background(), eng, job, &out); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if out.ID != 7 || out.Name != "widget" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestJSONRejectsWrongShape(t *testing.T) {
	eng := engine.New(http.DefaultClient, nil, nil)
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: "http://example.invalid"},
		Retry:   retry.Config{Tries: 1},
		Shape:   CSVRows{},
		TempDir: t.TempDir(),
	}

	var out map[string]any
	if err := JSON(context.Background(), eng, job, &out); err == nil {
		t.Fatalf("expected an error for a non-JSONWhole job shape")
	}
}

func TestJSONPropagatesEngineFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	eng := engine.New(http.DefaultClient, nil, nil)
	job := Job{
		Spec:    engine.RequestSpec{Method: "GET", URL: srv.URL},
		Retry:   retry.Config{Tries: 1, Delay: 0},
		Shape:   JSONWhole{},
		TempDir: t.TempDir(),
	}

	var out map[string]any
	if err := JSON(context.Background(), eng, job, &out); err == nil {
		t.Fatalf("expected an error when the server returns 500")
	}
}
