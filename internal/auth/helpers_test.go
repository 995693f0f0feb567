package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/naveenspark/ieum/pkg/client"
)

// fakeBackend is an httptest server with one handler per path that counts
// every request it receives.
type fakeBackend struct {
	srv    *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string]map[string]any
}

func newFakeBackend(t *testing.T, routes map[string]http.HandlerFunc) (*fakeBackend, *client.Client) {
	t.Helper()
	fb := &fakeBackend{hits: map[string]int{}, bodies: map[string]map[string]any{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		fb.mu.Lock()
		fb.hits[r.URL.Path]++
		fb.bodies[r.URL.Path] = body
		fb.mu.Unlock()
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb, client.New(fb.srv.URL, "")
}

func (fb *fakeBackend) count(path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[path]
}

func (fb *fakeBackend) body(path string) map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.bodies[path]
}

func total(fb *fakeBackend) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.hits {
		n += c
	}
	return n
}

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
