// Package stage implements the pipeline fabric: a uniform worker loop that
// the processing stages (VAD, transcriber, responder, synthesizer, and the
// loopback transport) plug into; the socket transports run their own loops.
// It is the Go generalization of the teacher's BaseHandler
// (setup once, process one item at a time, propagate a shutdown sentinel)
// parameterized over the input/output payload types of a given edge.
package stage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Item is the value carried on an inter-stage queue: either a payload or
// the shutdown sentinel. Every stage consumes exactly one sentinel on its
// input and emits exactly one sentinel on its output before exiting.
type Item[T any] struct {
	Value    T
	Sentinel bool
}

// Payload wraps a value as a normal (non-sentinel) queue item.
func Payload[T any](v T) Item[T] {
	return Item[T]{Value: v}
}

// Shutdown returns the sentinel item for T.
func Shutdown[T any]() Item[T] {
	return Item[T]{Sentinel: true}
}

// Queue is the minimal blocking take/put primitive a stage needs. Both
// Unbounded and Bounded in package queue implement it.
type Queue[T any] interface {
	Put(v T)
	Take() (T, bool)
}

// Processor is the contract a stage implementer provides. Setup is called
// once before the worker loop starts; Process is invoked once per
// non-sentinel input and its returned slice is enqueued onto the output
// queue in order; Teardown runs once after the loop exits, before the
// sentinel is emitted downstream.
type Processor[In, Out any] interface {
	Setup(ctx context.Context) error
	Process(ctx context.Context, in In) ([]Out, error)
	Teardown()
}

// Runner drives one stage's worker loop: take item; if sentinel, break;
// else iterate Process(item) and enqueue each output; on exit, run
// teardown and enqueue exactly one sentinel downstream. Process failures
// are logged and the offending item is dropped — the loop continues.
type Runner[In, Out any] struct {
	Name string
	Proc Processor[In, Out]
	In   Queue[Item[In]]
	Out  Queue[Item[Out]]
}

// Run executes the worker loop until a sentinel is consumed or ctx is
// cancelled between items. It never panics out of a failing Process call.
func (r *Runner[In, Out]) Run(ctx context.Context) error {
	log := logrus.WithField("stage", r.Name)

	if err := r.Proc.Setup(ctx); err != nil {
		log.WithError(err).Error("stage setup failed")
		return fmt.Errorf("stage %s: %w: %v", r.Name, ErrSetupFailed, err)
	}

	for {
		item, ok := r.In.Take()
		if !ok {
			// Input queue closed without an explicit sentinel (e.g. an
			// unbounded queue shut down out of band); treat as shutdown.
			break
		}
		if item.Sentinel {
			break
		}

		select {
		case <-ctx.Done():
			// Stop flag observed at a new-item boundary: drop this item
			// and stop, same as any other shutdown path.
		default:
			outs, err := r.safeProcess(ctx, item.Value)
			if err != nil {
				log.WithError(err).Warn("process failed, dropping item")
			} else {
				for _, o := range outs {
					r.Out.Put(Payload(o))
				}
			}
			continue
		}
		break
	}

	r.Proc.Teardown()
	r.Out.Put(Shutdown[Out]())
	log.Debug("stage stopped")
	return nil
}

// safeProcess isolates a Process call so an implementer panic cannot take
// the whole pipeline down with it — per spec, implementations must not let
// exceptions escape, and the framework must log and continue regardless.
func (r *Runner[In, Out]) safeProcess(ctx context.Context, in In) (outs []Out, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s.Process: %v", r.Name, rec)
		}
	}()
	return r.Proc.Process(ctx, in)
}
