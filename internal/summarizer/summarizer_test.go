package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/ratelimit"
)

// stubClient uppercases text for translations and echoes a fixed summary.
type stubClient struct {
	summary      string
	summarizeErr error
	translateErr error
	delay        time.Duration

	summarizeCalls int32
	translateCalls int32
}

func (s *stubClient) Summarize(ctx context.Context, text, language string) (string, error) {
	atomic.AddInt32(&s.summarizeCalls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.summarizeErr != nil {
		return "", s.summarizeErr
	}
	return s.summary, nil
}

func (s *stubClient) Translate(_ context.Context, text, _ string) (string, error) {
	atomic.AddInt32(&s.translateCalls, 1)
	if s.translateErr != nil {
		return "", s.translateErr
	}
	return strings.ToUpper(text), nil
}

func (s *stubClient) WarmUp(context.Context) error { return nil }

func TestIsDefaultLanguage(t *testing.T) {
	tests := map[string]bool{
		"English":  true,
		"english":  true,
		" ENGLISH": true,
		"":         true,
		"Spanish":  false,
		"Chinese":  false,
	}
	for in, want := range tests {
		if got := IsDefaultLanguage(in); got != want {
			t.Errorf("IsDefaultLanguage(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 1500)
	if got := Truncate(long, 1000); len(got) != 1000 {
		t.Errorf("len = %d, want 1000", len(got))
	}
	if got := Truncate("ñandú", 3); got != "ñan" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("short", 1000); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestSummarizeIn(t *testing.T) {
	ctx := context.Background()

	t.Run("default language skips translation", func(t *testing.T) {
		c := &stubClient{summary: "a summary"}
		got, err := SummarizeIn(ctx, c, "text", "English", nil)
		if err != nil || got != "a summary" {
			t.Fatalf("got %q, %v", got, err)
		}
		if c.translateCalls != 0 {
			t.Errorf("translate called %d times", c.translateCalls)
		}
	})

	t.Run("translates summary", func(t *testing.T) {
		c := &stubClient{summary: "a summary"}
		got, err := SummarizeIn(ctx, c, "text", "Spanish", nil)
		if err != nil || got != "A SUMMARY" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("translation failure keeps summary", func(t *testing.T) {
		c := &stubClient{summary: "a summary", translateErr: errors.New("down")}
		got, err := SummarizeIn(ctx, c, "text", "French", nil)
		if err != nil || got != "a summary" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("summary failure propagates", func(t *testing.T) {
		c := &stubClient{summarizeErr: errors.New("down")}
		if _, err := SummarizeIn(ctx, c, "text", "French", nil); err == nil {
			t.Fatal("expected error")
		}
		if c.translateCalls != 0 {
			t.Error("translate should not run after failed summary")
		}
	})
}

func TestGuardWrapsFailures(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()

	c := Guard(&stubClient{summarizeErr: errors.New("rate limited")}, GuardConfig{Provider: "stub", Metrics: m})
	_, err := c.Summarize(ctx, "text", "English")

	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if se.Op != "summarize" || se.Provider != "stub" {
		t.Errorf("unexpected error fields: %+v", se)
	}
	if got := m.GetStats()["summary_failures"].(int64); got != 1 {
		t.Errorf("summary_failures = %d, want 1", got)
	}
}

func TestGuardTimeout(t *testing.T) {
	c := Guard(&stubClient{summary: "late", delay: time.Second}, GuardConfig{
		Provider: "stub",
		Timeout:  10 * time.Millisecond,
		Metrics:  metrics.New(),
	})

	start := time.Now()
	_, err := c.Summarize(context.Background(), "text", "English")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("timeout should surface as *Error, got %T", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout did not bound the call")
	}
}

func TestGuardEmptyResponse(t *testing.T) {
	c := Guard(&stubClient{summary: "   "}, GuardConfig{Provider: "stub", Metrics: metrics.New()})
	if _, err := c.Summarize(context.Background(), "text", "English"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGuardTranslateDefaultLanguagePassesThrough(t *testing.T) {
	stub := &stubClient{}
	c := Guard(stub, GuardConfig{Provider: "stub", Metrics: metrics.New()})

	got, err := c.Translate(context.Background(), "Hello", "English")
	if err != nil || got != "Hello" {
		t.Fatalf("got %q, %v", got, err)
	}
	if stub.translateCalls != 0 {
		t.Errorf("provider called %d times for default language", stub.translateCalls)
	}

	got, err = c.Translate(context.Background(), "Hello", "German")
	if err != nil || got != "HELLO" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestGuardBudgetExceeded(t *testing.T) {
	limiter := ratelimit.NewAIRateLimiter(ratelimit.Limits{Total: 1})
	stub := &stubClient{summary: "first summary"}
	c := Guard(stub, GuardConfig{Provider: "stub", Limiter: limiter, Metrics: metrics.New()})

	if _, err := c.Summarize(context.Background(), "a", "English"); err != nil {
		t.Fatal(err)
	}
	_, err := c.Summarize(context.Background(), "b", "English")
	if !errors.Is(err, ratelimit.ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
	if stub.summarizeCalls != 1 {
		t.Errorf("provider called %d times, want 1", stub.summarizeCalls)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, closeFn, err := NewProvider(context.Background(), ProviderConfig{Provider: "llama"}); err == nil {
		t.Fatal("expected error for unknown provider")
	} else if closeFn == nil {
		t.Fatal("close func must never be nil")
	}
}

func TestNewProviderGeminiWithoutKey(t *testing.T) {
	c, closeFn, err := NewProvider(context.Background(), ProviderConfig{Provider: ProviderGemini})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer closeFn()

	if _, err := c.Summarize(context.Background(), "text", "English"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
