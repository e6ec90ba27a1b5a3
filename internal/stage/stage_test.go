package stage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lokutor-ai/voicepipe/internal/queue"
)

type doubler struct {
	teardownCalled bool
}

func (d *doubler) Setup(ctx context.Context) error { return nil }

func (d *doubler) Process(ctx context.Context, in int) ([]int, error) {
	if in < 0 {
		return nil, errors.New("negative input")
	}
	return []int{in * 2}, nil
}

func (d *doubler) Teardown() { d.teardownCalled = true }

func TestRunnerProcessesItemsAndPropagatesSentinel(t *testing.T) {
	in := queue.NewUnbounded[Item[int]]()
	out := queue.NewUnbounded[Item[int]]()
	proc := &doubler{}
	r := &Runner[int, int]{Name: "doubler", Proc: proc, In: in, Out: out}

	in.Put(Payload(1))
	in.Put(Payload(2))
	in.Put(Shutdown[int]())

	done := make(chan error)
	go func() { done <- r.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	v1, ok := out.Take()
	if !ok || v1.Sentinel || v1.Value != 2 {
		t.Fatalf("expected payload 2, got %+v (ok=%v)", v1, ok)
	}
	v2, ok := out.Take()
	if !ok || v2.Sentinel || v2.Value != 4 {
		t.Fatalf("expected payload 4, got %+v (ok=%v)", v2, ok)
	}
	v3, ok := out.Take()
	if !ok || !v3.Sentinel {
		t.Fatalf("expected sentinel, got %+v (ok=%v)", v3, ok)
	}
	if !proc.teardownCalled {
		t.Fatal("expected Teardown to be called before Run returns")
	}
}

func TestRunnerDropsItemOnProcessError(t *testing.T) {
	in := queue.NewUnbounded[Item[int]]()
	out := queue.NewUnbounded[Item[int]]()
	r := &Runner[int, int]{Name: "doubler", Proc: &doubler{}, In: in, Out: out}

	in.Put(Payload(-1))
	in.Put(Payload(5))
	in.Put(Shutdown[int]())

	go r.Run(context.Background())

	v, ok := out.Take()
	if !ok || v.Value != 10 {
		t.Fatalf("expected the failed item to be dropped and the next item to proceed, got %+v (ok=%v)", v, ok)
	}
}

type panicker struct{}

func (p *panicker) Setup(ctx context.Context) error { return nil }
func (p *panicker) Process(ctx context.Context, in int) ([]int, error) {
	panic("process blew up")
}
func (p *panicker) Teardown() {}

func TestRunnerRecoversFromProcessPanic(t *testing.T) {
	in := queue.NewUnbounded[Item[int]]()
	out := queue.NewUnbounded[Item[int]]()
	r := &Runner[int, int]{Name: "panicker", Proc: &panicker{}, In: in, Out: out}

	in.Put(Payload(1))
	in.Put(Shutdown[int]())

	done := make(chan error)
	go func() { done <- r.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected Run to exit cleanly despite the panic, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after a panicking Process call")
	}

	v, ok := out.Take()
	if !ok || !v.Sentinel {
		t.Fatalf("expected sentinel after the panicking item was dropped, got %+v (ok=%v)", v, ok)
	}
}

func TestRunnerSetupErrorStopsBeforeProcessing(t *testing.T) {
	in := queue.NewUnbounded[Item[int]]()
	out := queue.NewUnbounded[Item[int]]()
	r := &Runner[int, int]{Name: "bad-setup", Proc: &badSetup{}, In: in, Out: out}

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error from a failing Setup")
	}
}

type badSetup struct{}

func (b *badSetup) Setup(ctx context.Context) error                    { return errors.New("setup failed") }
func (b *badSetup) Process(ctx context.Context, in int) ([]int, error) { return nil, nil }
func (b *badSetup) Teardown()                                          {}
