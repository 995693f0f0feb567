package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), ".ieum")
	s := NewFileStore(dir)

	if _, err := s.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty dir = %v", err)
	}
	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "token"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token perm = %o, want 600", perm)
	}
	if err := s.Set(ctx, "token", "def"); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Get(ctx, "token"); err != nil || v != "def" {
		t.Errorf("Get() = %q, %v", v, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the token", len(entries))
	}

	if err := s.Delete(ctx, "token"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "token"); err != nil {
		t.Errorf("Delete() of missing key = %v", err)
	}
	if _, err := s.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v", err)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, k := range []string{"", "..", "../token", "a/b"} {
		if err := s.Set(context.Background(), k, "x"); err == nil {
			t.Errorf("Set(%q) should fail", k)
		}
	}
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("  tok\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if v, err := NewFileStore(dir).Get(context.Background(), "token"); err != nil || v != "tok" {
		t.Errorf("Get() = %q, %v", v, err)
	}
}

func TestMemoryStoreScopes(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemoryStore(), NewMemoryStore()
	if a.Scope() == b.Scope() {
		t.Error("two tabs share a scope id")
	}
	a.Set(ctx, "senior_token", "t1") //nolint:errcheck
	if _, err := b.Get(ctx, "senior_token"); !errors.Is(err, ErrNotFound) {
		t.Error("tab scopes leak into each other")
	}
}

type fakeRedis struct {
	data map[string]string
	fail error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.fail != nil {
		return redis.NewStringResult("", f.fail)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.fail != nil {
		return redis.NewStatusResult("", f.fail)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.fail != nil {
		return redis.NewIntResult(0, f.fail)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	fr := &fakeRedis{data: map[string]string{}}
	s := newRedisStore(fr, "")

	if _, err := s.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty = %v", err)
	}
	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatal(err)
	}
	if fr.data["ieum:token"] != "abc" {
		t.Errorf("redis data = %v", fr.data)
	}
	if v, err := s.Get(ctx, "token"); err != nil || v != "abc" {
		t.Errorf("Get() = %q, %v", v, err)
	}
	if err := s.Delete(ctx, "token"); err != nil {
		t.Fatal(err)
	}
	if len(fr.data) != 0 {
		t.Errorf("redis data after delete = %v", fr.data)
	}
}

func TestRedisStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := newRedisStore(&fakeRedis{data: map[string]string{}, fail: boom}, "test")
	if _, err := s.Get(context.Background(), "token"); !errors.Is(err, boom) {
		t.Errorf("Get() = %v", err)
	}
	if err := s.Set(context.Background(), "token", "x"); !errors.Is(err, boom) {
		t.Errorf("Set() = %v", err)
	}
}

func TestOpenDurable(t *testing.T) {
	dir := t.TempDir()
	if fs, ok := OpenDurable(dir, "", "", nil).(*FileStore); !ok || fs.Dir() != dir {
		t.Error("expected a file store without a redis address")
	}
	rs, ok := OpenDurable(dir, "127.0.0.1:6379", "", nil).(*RedisStore)
	if !ok {
		t.Fatal("expected a redis store")
	}
	rs.Close() //nolint:errcheck
}
