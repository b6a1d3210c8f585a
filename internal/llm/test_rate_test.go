package llm

import (
	"context"
	"testing"
	"time"

	llmclient "symposium/internal/llmClient"
	"symposium/internal/tester"
)

// fast fake client that returns immediately
type fastClient struct{}

func (f *fastClient) Name() string { return "fast" }
func (f *fastClient) Close() error { return nil }
func (f *fastClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "ok", nil
}

// spy records timestamps when requests reach the inner client
type spy struct{ times []time.Time }
type spyingClient struct {
	next llmclient.TextClient
	rec  *spy
}

func (s *spyingClient) Name() string { return s.next.Name() }
func (s *spyingClient) Close() error { return s.next.Close() }
func (s *spyingClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.rec.times = append(s.rec.times, time.Now())
	return s.next.GenerateText(ctx, prompt)
}

func TestRate_RPS_2PerSecond_Burst1_Spacing(t *testing.T) {
	// Expect ~>=500ms spacing after the first call when rps=2 and burst=1.
	rec := &spy{}
	cli := Wrap(&spyingClient{next: &fastClient{}, rec: rec}, RateLimit(2, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	if _, err := cli.GenerateText(ctx, "p"); err != nil {
		t.Fatal(err)
	}
	if _, err := cli.GenerateText(ctx, "p"); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	tester.True(t, elapsed >= 450*time.Millisecond, "expected throttling >=450ms, got %v", elapsed)
	tester.Eq(t, len(rec.times), 2, "two calls should reach inner client")
}

func TestRateLimitDisabled(t *testing.T) {
	cli := Wrap(&fastClient{}, RateLimit(0, 0))
	t.Cleanup(func() { _ = cli.Close() })

	start := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := cli.GenerateText(context.Background(), "p"); err != nil {
			t.Fatal(err)
		}
	}
	tester.True(t, time.Since(start) < 100*time.Millisecond, "disabled limiter should not wait")
}

func TestRateLimitCanceledContextIsFatal(t *testing.T) {
	cli := Wrap(&fastClient{}, RateLimit(0.01, 1))
	t.Cleanup(func() { _ = cli.Close() })

	// drain the burst token
	if _, err := cli.GenerateText(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cli.GenerateText(ctx, "p")
	if err == nil {
		t.Fatalf("expected limiter error")
	}
	tester.Eq(t, llmclient.Classify(err), llmclient.ClassFatal)
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("SYMPOSIUM_TEST_RPS", "2")
	t.Setenv("SYMPOSIUM_TEST_BURST", "1")
	cli := Wrap(&fastClient{}, RateLimitFromEnv("UNSET_PREFIX", "SYMPOSIUM_TEST"))
	t.Cleanup(func() { _ = cli.Close() })

	rl, ok := cli.(*rateLimited)
	tester.True(t, ok, "expected rate limited client")
	tester.True(t, rl.rl != nil, "limiter should be enabled from env")
	tester.Eq(t, rl.rl.burst, 1)
	tester.Eq(t, rl.rl.interval, 500*time.Millisecond)
}

func TestBucketReservations(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newBucket(2, 2)
	b.now = func() time.Time { return now }

	tester.Eq(t, b.reserve(), time.Duration(0), "first burst slot")
	tester.Eq(t, b.reserve(), time.Duration(0), "second burst slot")
	tester.Eq(t, b.reserve(), 500*time.Millisecond)

	now = now.Add(time.Second)
	tester.Eq(t, b.reserve(), time.Duration(0))
	tester.Eq(t, b.reserve(), 500*time.Millisecond)

	now = now.Add(time.Minute)
	tester.Eq(t, b.reserve(), time.Duration(0), "idle time refills the burst")
	tester.Eq(t, b.reserve(), time.Duration(0))
}

func TestBucketCloseReleasesWaiters(t *testing.T) {
	b := newBucket(0.01, 1)
	tester.NoErr(t, b.wait(context.Background()))
	done := make(chan error, 1)
	go func() { done <- b.wait(context.Background()) }()
	b.close()
	select {
	case err := <-done:
		tester.ErrIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by close")
	}
}
