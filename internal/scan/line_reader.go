// Package scan provides token reader implementations for the verification machine.
package scan

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineReader yields one candidate per line read from an io.Reader (stdin at
// the terminal, where a barcode scanner types the token and hits enter).
type LineReader struct {
	src io.Reader

	mu      sync.Mutex
	stopped chan struct{}
}

// NewLineReader wraps the given source.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{src: src}
}

// Start begins reading lines. The returned channel closes when the source is
// exhausted, the context is done, or Stop is called.
func (r *LineReader) Start(ctx context.Context) (<-chan string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = make(chan struct{})
	stopped := r.stopped

	out := make(chan string)
	lines := make(chan string)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.src)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-stopped:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer close(out)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return
				}
				if line == "" {
					continue
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

// Stop terminates the current session. Safe to call more than once or before
// Start.
func (r *LineReader) Stop() error {
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
