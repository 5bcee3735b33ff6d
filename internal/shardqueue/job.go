package shardqueue

import (
	"context"
	"fmt"
)

// Job is one queued mutation. A Job runs at most once.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// replyJob runs fn and hands its outcome to the waiting Do caller. A panic
// in fn is reported as an error.
type replyJob struct {
	fn    func(context.Context) error
	reply chan error // buffered, so a caller that gave up never blocks the shard
}

func newReplyJob(fn func(context.Context) error) *replyJob {
	return &replyJob{fn: fn, reply: make(chan error, 1)}
}

func (j *replyJob) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shardqueue: job panic: %v", r)
		}
		j.reply <- err
	}()
	return j.fn(ctx)
}
