package transport

import "context"

// LocalLoopback is the degenerate stage used when the pipeline's ingress
// and egress are the same physical audio path: it forwards each Frame
// unchanged, so the pipeline topology never needs to special-case the
// non-socket mode. Grounded on
// original_source/connections/local_audio_streamer.py.
type LocalLoopback[T any] struct{}

// Setup is a no-op.
func (l *LocalLoopback[T]) Setup(ctx context.Context) error { return nil }

// Process yields its input unchanged.
func (l *LocalLoopback[T]) Process(ctx context.Context, in T) ([]T, error) {
	return []T{in}, nil
}

// Teardown is a no-op.
func (l *LocalLoopback[T]) Teardown() {}
