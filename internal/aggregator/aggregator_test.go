package aggregator

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
)

// funcProcessor adapts a function to Processor.
type funcProcessor struct {
	fn    func(ctx context.Context, a news.RawArticle, language string) news.Record
	calls int32
}

func (p *funcProcessor) Process(ctx context.Context, a news.RawArticle, language string) news.Record {
	atomic.AddInt32(&p.calls, 1)
	return p.fn(ctx, a, language)
}

type warmer struct {
	err   error
	calls int32
}

func (w *warmer) WarmUp(context.Context) error {
	atomic.AddInt32(&w.calls, 1)
	return w.err
}

func articles(n int) []news.RawArticle {
	out := make([]news.RawArticle, n)
	for i := range out {
		out[i] = news.RawArticle{Title: strconv.Itoa(i), Description: strings.Repeat("x", 60)}
	}
	return out
}

func okRecord(a news.RawArticle) news.Record {
	return news.Record{Title: a.Title, Summary: "summary of " + a.Title, Status: news.StatusOK}
}

func newAggregator(p Processor, w Warmer, opts Options) *Aggregator {
	return New(p, w, opts, nil).WithMetrics(metrics.New())
}

func TestAggregateEmptyBatch(t *testing.T) {
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record { return okRecord(a) }}
	w := &warmer{}

	res := newAggregator(p, w, Options{WarmUp: true}).Aggregate(context.Background(), nil, "English")
	if !errors.Is(res.Err, ErrNoArticles) {
		t.Fatalf("err = %v, want ErrNoArticles", res.Err)
	}
	if res.Message() != MessageNoArticles {
		t.Errorf("message = %q", res.Message())
	}
	if p.calls != 0 || w.calls != 0 {
		t.Errorf("no work expected, got %d process and %d warm-up calls", p.calls, w.calls)
	}
}

func TestAggregateAllFailed(t *testing.T) {
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record {
		return news.Record{Title: a.Title, Status: news.StatusError}
	}}

	res := newAggregator(p, nil, Options{}).Aggregate(context.Background(), articles(3), "English")
	if !errors.Is(res.Err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", res.Err)
	}
	if res.Message() != MessageAllFailed {
		t.Errorf("message = %q", res.Message())
	}
	if res.Failed != 3 || res.Succeeded != 0 {
		t.Errorf("succeeded=%d failed=%d", res.Succeeded, res.Failed)
	}
}

func TestAggregatePreservesOrder(t *testing.T) {
	for _, n := range []int{1, 2, 10, 50} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record {
				time.Sleep(time.Duration(rand.Intn(5000)) * time.Microsecond)
				return okRecord(a)
			}}

			res := newAggregator(p, nil, Options{}).Aggregate(context.Background(), articles(n), "English")
			if res.Err != nil {
				t.Fatalf("unexpected err: %v", res.Err)
			}
			if len(res.Records) != n {
				t.Fatalf("got %d records, want %d", len(res.Records), n)
			}
			for i, rec := range res.Records {
				if rec.Title != strconv.Itoa(i) {
					t.Fatalf("record %d has title %q", i, rec.Title)
				}
			}
		})
	}
}

func TestAggregateIsolatesFailures(t *testing.T) {
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record {
		if a.Title == "1" {
			return news.Record{Title: a.Title, Status: news.StatusError}
		}
		return okRecord(a)
	}}

	res := newAggregator(p, nil, Options{}).Aggregate(context.Background(), articles(4), "English")
	if res.Err != nil {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	if res.Succeeded != 3 || res.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d", res.Succeeded, res.Failed)
	}
	if res.Records[1].Status != news.StatusError || res.Records[2].Status != news.StatusOK {
		t.Errorf("unexpected statuses: %+v", res.Records)
	}
	if res.Message() != "" {
		t.Errorf("message = %q, want empty", res.Message())
	}
}

func TestAggregateWarmUpFailureIsNotFatal(t *testing.T) {
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record { return okRecord(a) }}
	w := &warmer{err: errors.New("connection refused")}

	res := newAggregator(p, w, Options{WarmUp: true}).Aggregate(context.Background(), articles(2), "English")
	if res.Err != nil {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	if w.calls != 1 {
		t.Errorf("warm-up calls = %d, want 1", w.calls)
	}
}

func TestAggregateSkipsWarmUpWhenDisabled(t *testing.T) {
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record { return okRecord(a) }}
	w := &warmer{}

	newAggregator(p, w, Options{}).Aggregate(context.Background(), articles(2), "English")
	if w.calls != 0 {
		t.Errorf("warm-up calls = %d, want 0", w.calls)
	}
}

func TestAggregateMaxConcurrency(t *testing.T) {
	var inFlight, peak int32
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return okRecord(a)
	}}

	res := newAggregator(p, nil, Options{MaxConcurrency: 2}).Aggregate(context.Background(), articles(8), "English")
	if len(res.Records) != 8 {
		t.Fatalf("got %d records", len(res.Records))
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestAggregateUnboundedRunsAllConcurrently(t *testing.T) {
	const n = 10
	release := make(chan struct{})
	var started int32
	p := &funcProcessor{fn: func(_ context.Context, a news.RawArticle, _ string) news.Record {
		if atomic.AddInt32(&started, 1) == n {
			close(release)
		}
		<-release
		return okRecord(a)
	}}

	done := make(chan BatchResult, 1)
	go func() {
		done <- newAggregator(p, nil, Options{}).Aggregate(context.Background(), articles(n), "English")
	}()

	select {
	case res := <-done:
		if res.Succeeded != n {
			t.Errorf("succeeded = %d", res.Succeeded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not all run concurrently")
	}
}

// summarizingClient counts provider calls and is slow enough for concurrent
// requests to overlap.
type summarizingClient struct {
	calls int32
}

func (c *summarizingClient) Summarize(context.Context, string, string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	time.Sleep(20 * time.Millisecond)
	return "A detailed summary that is comfortably longer than fifty characters.", nil
}

func (c *summarizingClient) Translate(_ context.Context, text, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

func (c *summarizingClient) WarmUp(context.Context) error { return nil }

func TestAggregateWithProcessorExampleScenario(t *testing.T) {
	client := &summarizingClient{}
	m := metrics.New()
	proc := news.NewProcessor(client, cache.New(cache.DefaultCapacity), news.Policy{}, nil).WithMetrics(m)
	agg := New(proc, client, Options{WarmUp: true}, nil).WithMetrics(m)

	batch := []news.RawArticle{
		{Title: "A", Description: strings.Repeat("x", 60), URL: "u1"},
		{Title: "B"},
	}
	res := agg.Aggregate(context.Background(), batch, "English")
	if res.Err != nil {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	if res.Records[0].Status != news.StatusOK || res.Records[0].Summary == "" || res.Records[0].Title != "A" {
		t.Errorf("record 1 = %+v", res.Records[0])
	}
	if res.Records[1].Status != news.StatusInsufficientContent || res.Records[1].Title != "B" {
		t.Errorf("record 2 = %+v", res.Records[1])
	}
}

func TestAggregateDuplicateArticlesSummarizedOnce(t *testing.T) {
	client := &summarizingClient{}
	proc := news.NewProcessor(client, cache.New(cache.DefaultCapacity), news.Policy{}, nil).WithMetrics(metrics.New())
	agg := New(proc, nil, Options{}, nil).WithMetrics(metrics.New())

	batch := make([]news.RawArticle, 5)
	for i := range batch {
		batch[i] = news.RawArticle{Title: "Same story", Description: strings.Repeat("identical text ", 6)}
	}

	agg.Aggregate(context.Background(), batch, "Spanish")
	agg.Aggregate(context.Background(), batch, "Spanish")
	if got := atomic.LoadInt32(&client.calls); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}
