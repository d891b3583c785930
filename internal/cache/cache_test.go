package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phihung0131/vocabulary-extension/internal/store"
)

// newTestCache returns a cache over a fresh memory store with a
// controllable clock.
func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	now := time.Now()
	c := New(store.NewMemoryStore(), store.TableWordCache, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGet_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	var out bool
	found, err := c.Get("absent", &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss for absent key")
	}
}

func TestGet_ValidUntilExpiry(t *testing.T) {
	c, now := newTestCache(t, time.Hour)

	if err := c.Put("walk", true, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var out bool
	// Just before expiry the entry is served.
	*now = now.Add(time.Hour - time.Second)
	found, err := c.Get("walk", &out)
	if err != nil || !found || !out {
		t.Fatalf("expected hit before expiry, found=%v out=%v err=%v", found, out, err)
	}

	// At exactly timestamp+ttl the entry is absent and deleted.
	*now = now.Add(time.Second)
	found, err = c.Get("walk", &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss at expiry boundary")
	}
	if _, err := c.store.Get(c.table, "walk"); err != store.ErrNotFound {
		t.Errorf("expired entry was not deleted, err=%v", err)
	}
}

func TestPut_OverwriteKeepsLatest(t *testing.T) {
	c, now := newTestCache(t, time.Hour)

	if err := c.Put("word", "first", time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := c.Put("word", "second", time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	count := 0
	_ = c.store.ForEach(c.table, func(string, []byte) error {
		count++
		return nil
	})
	if count != 1 {
		t.Errorf("expected exactly 1 entry, got %d", count)
	}

	var out string
	found, err := c.Get("word", &out)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if out != "second" {
		t.Errorf("value = %q; want %q", out, "second")
	}

	// The overwrite refreshed the timestamp, so expiry counts from it.
	*now = now.Add(time.Hour - time.Second)
	found, _ = c.Get("word", &out)
	if !found {
		t.Error("expected hit: overwrite should refresh timestamp")
	}
}

func TestGetOrCompute(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	got, err := GetOrCompute(c, "k", time.Hour, compute)
	if err != nil || got != 42 {
		t.Fatalf("GetOrCompute = %d, %v", got, err)
	}
	got, err = GetOrCompute(c, "k", time.Hour, compute)
	if err != nil || got != 42 {
		t.Fatalf("GetOrCompute = %d, %v", got, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times; want 1", calls)
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	wantErr := errors.New("upstream down")
	_, err := GetOrCompute(c, "k", time.Hour, func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v; want %v", err, wantErr)
	}

	calls := 0
	got, err := GetOrCompute(c, "k", time.Hour, func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || got != 7 || calls != 1 {
		t.Errorf("failed compute was cached: got=%d calls=%d err=%v", got, calls, err)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Put(key, key, time.Hour); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if err := c.Invalidate("a"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	var out string
	if found, _ := c.Get("a", &out); found {
		t.Error("expected miss after Invalidate")
	}
	if found, _ := c.Get("b", &out); !found {
		t.Error("Invalidate removed an unrelated key")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if found, _ := c.Get("b", &out); found {
		t.Error("expected miss after Clear")
	}
}

func TestSweepExpired(t *testing.T) {
	c, now := newTestCache(t, time.Hour)

	if err := c.Put("short", 1, time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("long", 2, 2*time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Unreadable entry is swept too.
	if err := c.store.Put(c.table, "garbage", []byte("not-json")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	*now = now.Add(time.Hour)
	removed, err := c.SweepExpired()
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d; want 2", removed)
	}

	var out int
	if found, _ := c.Get("long", &out); !found || out != 2 {
		t.Errorf("sweep removed a live entry, found=%v out=%d", found, out)
	}
}

func TestStartSweeper_LogsSweep(t *testing.T) {
	now := time.Now()
	c := New(store.NewMemoryStore(), store.TableWordCache, time.Hour)
	if err := c.Put("stale", 1, 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Entry was written at now; jump the clock past its TTL.
	c.now = func() time.Time { return now.Add(2 * time.Hour) }

	var buf bytes.Buffer
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	StartSweeper(ctx, time.Hour, logger, c)

	time.Sleep(100 * time.Millisecond)
	cancel()

	if !bytes.Contains(buf.Bytes(), []byte("swept expired cache entries")) {
		t.Errorf("expected sweep log, got:\n%s", buf.String())
	}
	var out int
	if found, _ := c.Get("stale", &out); found {
		t.Error("sweeper did not remove the stale entry")
	}
}
