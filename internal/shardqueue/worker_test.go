package shardqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_ReturnsJobResult(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 2})
	defer ex.Stop()

	want := errors.New("server said no")
	if err := ex.Do(context.Background(), "bookmarks", func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected job error, got %v", err)
	}
	if err := ex.Do(context.Background(), "bookmarks", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestDo_RecoversJobPanic(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1})
	defer ex.Stop()

	err := ex.Do(context.Background(), "bookmarks", func(context.Context) error { panic("boom") })
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if err := ex.Barrier(context.Background(), "bookmarks"); err != nil {
		t.Fatalf("shard unusable after panic: %v", err)
	}
}

func TestDo_CallerGivesUpWhileQueued(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 4})
	defer ex.Stop()

	release := blockShard(t, ex, "bookmarks")
	var ran int32
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := ex.Do(ctx, "bookmarks", func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	release()
	if err := ex.Barrier(context.Background(), "bookmarks"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) == 1 {
		t.Fatal("job ran after its caller gave up")
	}
}

func TestErrorHandler_CalledOnceWithoutRetry(t *testing.T) {
	t.Parallel()
	var handled, runs int32
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8, ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) }})
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "reviews:giza", JobFunc(func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("boom")
	}))
	if err := ex.Barrier(context.Background(), "reviews:giza"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("job ran %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Fatalf("error handler calls = %d, want 1", got)
	}
}

func TestErrorHandler_PanicRecovered(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8, ErrorHandler: func(error) { panic("handler panic") }})
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "bookmarks", JobFunc(func(context.Context) error { return errors.New("boom") }))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "bookmarks"); err != nil {
		t.Fatalf("worker did not continue after handler panic: %v", err)
	}
}

func TestWorker_SkipsRunForCanceledJob(t *testing.T) {
	t.Parallel()
	var handled, ran int32
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 2, ErrorHandler: func(err error) {
		if errors.Is(err, context.Canceled) {
			atomic.AddInt32(&handled, 1)
		}
	}})
	defer ex.Stop()

	release := blockShard(t, ex, "bookmarks")
	jobCtx, cancelJob := context.WithCancel(context.Background())
	if err := ex.Submit(jobCtx, "bookmarks", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancelJob()
	release()

	if err := ex.Barrier(context.Background(), "bookmarks"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) == 1 {
		t.Fatal("job Run should not have been called for canceled context")
	}
	if atomic.LoadInt32(&handled) == 0 {
		t.Fatal("expected error handler to be invoked for canceled job")
	}
}

func TestWorker_PanicDoesNotStopOtherShards(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 2, QueueSize: 4})
	defer ex.Stop()

	keyPanic, keyOther := "reviews:luxor", "bookmarks"
	for i := 0; i < 100 && ex.shardFor(keyOther) == ex.shardFor(keyPanic); i++ {
		keyOther += "x"
	}
	if ex.shardFor(keyOther) == ex.shardFor(keyPanic) {
		t.Fatal("failed to find keys mapping to different shards")
	}

	_ = ex.Submit(context.Background(), keyPanic, JobFunc(func(context.Context) error { panic("job panic") }))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, keyOther); err != nil {
		t.Fatalf("other shard did not continue after worker panic: %v", err)
	}
}
