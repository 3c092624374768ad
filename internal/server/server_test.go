package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"animal-registry/internal/assets"
	"animal-registry/internal/store"
)

// newTestServer wires a Server against the in-memory store and a temp-dir
// disk asset store.
func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	disk, err := assets.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("disk asset store: %v", err)
	}

	log := &Logger{output: io.Discard, minLevel: LogLevelError}
	cfg := Config{Addr: ":0", DBName: "AnimalDatabase", Storage: StorageDisk}
	return New(cfg, mem, disk, log), mem
}

// failingStore returns the given error from every operation.
type failingStore struct {
	err error
}

func (f failingStore) ListAnimals(context.Context) ([]store.Animal, error) { return nil, f.err }
func (f failingStore) CreateAnimal(context.Context, string, store.ImageRef) (string, error) {
	return "", f.err
}
func (f failingStore) ListCategories(context.Context) ([]store.Category, error) {
	return nil, f.err
}
func (f failingStore) CreateCategory(context.Context, string) (string, error) { return "", f.err }

func newFailingServer(t *testing.T, err error) *Server {
	t.Helper()
	disk, derr := assets.NewDisk(t.TempDir())
	if derr != nil {
		t.Fatalf("disk asset store: %v", derr)
	}
	log := &Logger{output: io.Discard, minLevel: LogLevelError}
	return New(Config{Addr: ":0", Storage: StorageDisk}, failingStore{err: err}, disk, log)
}

func doRequest(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) messageResp {
	t.Helper()
	var resp messageResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a JSON message object: %v (body %q)", err, rr.Body.String())
	}
	return resp
}

func TestRootBanner(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on every response")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		rr := doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rr.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
}
