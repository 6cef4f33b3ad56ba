package scan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case line, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, line)
		case <-timeout:
			t.Fatalf("timed out after %d candidates", len(out))
		}
	}
	return out
}

func TestLineReader_TrimsAndSkipsBlankLines(t *testing.T) {
	t.Parallel()
	r := NewLineReader(strings.NewReader("  DRV-1-abcdefghi  \n\n   \nDRV-2-jklmnopqr\n"))

	ch, err := r.Start(context.Background())
	require.NoError(t, err)

	got := collect(t, ch, 2)
	require.Equal(t, []string{"DRV-1-abcdefghi", "DRV-2-jklmnopqr"}, got)

	// source exhausted -> channel closes
	_, ok := <-ch
	require.False(t, ok)
}

func TestLineReader_StopClosesChannel(t *testing.T) {
	t.Parallel()
	blocked := make(chan struct{})
	r := NewLineReader(blockingReader{unblock: blocked})
	ch, err := r.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.Stop())
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Stop")
	}

	// Stop is idempotent
	require.NoError(t, r.Stop())
	close(blocked)
}

// blockingReader blocks Read until unblock is closed, then reports EOF.
type blockingReader struct{ unblock chan struct{} }

func (b blockingReader) Read([]byte) (int, error) {
	<-b.unblock
	return 0, nil
}

func TestLineReader_ContextCancelClosesChannel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewLineReader(blockingReader{unblock: make(chan struct{})})
	ch, err := r.Start(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestChannelReader_ForwardsUntilStop(t *testing.T) {
	t.Parallel()
	src := make(chan string, 3)
	src <- "one"
	src <- "two"

	r := NewChannelReader(src)
	ch, err := r.Start(context.Background())
	require.NoError(t, err)

	got := collect(t, ch, 2)
	require.Equal(t, []string{"one", "two"}, got)

	require.NoError(t, r.Stop())
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Stop")
	}

	// the source stays usable for the next consumer
	src <- "three"
	require.Equal(t, "three", <-src)
}
