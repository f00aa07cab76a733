package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vastrahub/vastra/pkg/queue"
)

var (
	echoCalls atomic.Int32
	failCalls atomic.Int32
)

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) Handle() error {
	echoCalls.Add(1)
	return nil
}

type failJob struct{}

func (j *failJob) Handle() error {
	failCalls.Add(1)
	return errors.New("always fails")
}

func init() {
	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func TestDispatchAndProcess(t *testing.T) {
	before := echoCalls.Load()
	if err := queue.Dispatch(&echoJob{Val: "hello"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for echoCalls.Load() == before {
		select {
		case <-deadline:
			t.Fatal("job was not processed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestFailedJobLandsInFailedList(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for len(queue.FailedJobs()) == 0 {
		select {
		case <-deadline:
			t.Fatal("expected a permanently failed job")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestMemoryDriverRoundTrip(t *testing.T) {
	d := queue.NewMemoryDriver()
	if err := d.Push([]byte("payload")); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	got, err := d.Pop(context.Background())
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q, want %q", got, "payload")
	}
}

func TestMemoryDriverPopHonoursContext(t *testing.T) {
	d := queue.NewMemoryDriver()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := d.Pop(ctx); err == nil {
		t.Error("expected context deadline error")
	}
}
