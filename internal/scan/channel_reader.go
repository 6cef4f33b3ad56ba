package scan

import (
	"context"
	"sync"
)

// ChannelReader adapts an existing line source (e.g. a shared interactive
// input loop) to the TokenReader port. Start forwards candidates from the
// source until Stop; the source itself is left running for the next consumer.
type ChannelReader struct {
	src <-chan string

	mu      sync.Mutex
	stopped chan struct{}
}

// NewChannelReader wraps the given source channel.
func NewChannelReader(src <-chan string) *ChannelReader {
	return &ChannelReader{src: src}
}

// Start begins forwarding. The returned channel closes when the source is
// exhausted, the context is done, or Stop is called.
func (r *ChannelReader) Start(ctx context.Context) (<-chan string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = make(chan struct{})
	stopped := r.stopped

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case line, ok := <-r.src:
				if !ok {
					return
				}
				select {
				case out <- line:
				case <-stopped:
					return
				case <-ctx.Done():
					return
				}
			case <-stopped:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Stop ends the current forwarding session. Idempotent.
func (r *ChannelReader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped != nil {
		select {
		case <-r.stopped:
		default:
			close(r.stopped)
		}
	}
	return nil
}
