package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func key(i int) Key {
	return Key{Fingerprint: fmt.Sprintf("article-%d", i), Language: "English"}
}

func constant(v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return v, nil }
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCreate(ctx, key(i), constant(fmt.Sprint(i))); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.GetOrCreate(ctx, key(3), constant("3")); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key(0)); ok {
		t.Error("key 0 should have been evicted")
	}
	for i := 1; i <= 3; i++ {
		if _, ok := c.Get(key(i)); !ok {
			t.Errorf("key %d should still be cached", i)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
	if got := c.Stats().Shared; got != 0 {
		t.Errorf("shared = %d, want 0 without concurrent callers", got)
	}
}

func TestGetProtectsFromEviction(t *testing.T) {
	c := New(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(key(i), fmt.Sprint(i))
	}
	if _, ok := c.Get(key(0)); !ok {
		t.Fatal("key 0 missing")
	}
	if _, err := c.GetOrCreate(ctx, key(3), constant("3")); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key(0)); !ok {
		t.Error("recently read key 0 was evicted")
	}
	if _, ok := c.Get(key(1)); ok {
		t.Error("key 1 should have been evicted as least recently used")
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestSameFingerprintDifferentLanguageIsDistinct(t *testing.T) {
	c := New(10)
	ctx := context.Background()

	en, _ := c.GetOrCreate(ctx, Key{Fingerprint: "x", Language: "English"}, constant("hello"))
	es, _ := c.GetOrCreate(ctx, Key{Fingerprint: "x", Language: "Spanish"}, constant("hola"))
	if en != "hello" || es != "hola" {
		t.Fatalf("got %q / %q", en, es)
	}
}

func TestConcurrentMissesComputeOnce(t *testing.T) {
	c := New(10)
	ctx := context.Background()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "summary", nil
	}

	const callers = 20
	results := make([]string, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrCreate(ctx, key(1), compute)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrCreate(ctx, key(1), compute)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("compute called %d times, want 1", got)
	}
	if got := c.Stats().Shared; got != callers-1 {
		t.Errorf("shared = %d, want %d", got, callers-1)
	}
	for i, r := range results {
		if r != "summary" {
			t.Errorf("caller %d got %q", i, r)
		}
	}

	if _, err := c.GetOrCreate(ctx, key(1), compute); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("cached key recomputed: calls = %d", got)
	}
}

func TestCancelledStarterDoesNotFailWaiters(t *testing.T) {
	c := New(10)

	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-release:
			return "summary", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	starterCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var starterErr, waiterErr error
	var waiterVal string
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, starterErr = c.GetOrCreate(starterCtx, key(1), compute)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		waiterVal, waiterErr = c.GetOrCreate(context.Background(), key(1), compute)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if waiterErr != nil || waiterVal != "summary" {
		t.Fatalf("waiter got %q, %v", waiterVal, waiterErr)
	}
	if starterErr != nil {
		t.Errorf("starter got %v", starterErr)
	}
	if v, ok := c.Get(key(1)); !ok || v != "summary" {
		t.Errorf("result not cached: %q, %v", v, ok)
	}
	if got := c.Stats().Shared; got != 1 {
		t.Errorf("shared = %d, want 1", got)
	}
}

func TestComputeKeepsContextValues(t *testing.T) {
	type ctxKey struct{}
	c := New(10)
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-7")

	v, err := c.GetOrCreate(ctx, key(1), func(ctx context.Context) (string, error) {
		id, _ := ctx.Value(ctxKey{}).(string)
		return id, nil
	})
	if err != nil || v != "req-7" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(10)
	ctx := context.Background()
	boom := errors.New("provider down")

	if _, err := c.GetOrCreate(ctx, key(1), func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Fatalf("failed compute was cached")
	}

	v, err := c.GetOrCreate(ctx, key(1), constant("recovered"))
	if err != nil || v != "recovered" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestNewDefaultsCapacity(t *testing.T) {
	if got := New(0).Stats().Capacity; got != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", got, DefaultCapacity)
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 10, "abc"},
		{"héllo wörld", 5, "héllo"},
		{"日本語テキスト", 3, "日本語"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := Fingerprint(tt.text, tt.n); got != tt.want {
			t.Errorf("Fingerprint(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
