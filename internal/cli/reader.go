package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a prompt is abandoned through its context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads ritual answers one line at a time. A read blocked on the
// terminal returns as soon as its context is done, so Ctrl-C during a prompt
// unwinds the ritual without waiting for Enter.
type LineReader struct {
	src *bufio.Reader
	mu  sync.Mutex
}

// NewLineReader wraps src. src must not be nil.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("cli: nil reader")
	}
	return &LineReader{src: bufio.NewReader(src)}
}

type lineResult struct {
	err  error
	line string
}

// ReadLine returns the next line with surrounding space trimmed. A final
// line without a newline is returned before io.EOF is.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	done := make(chan lineResult, 1)
	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		line, err := r.src.ReadString('\n')
		done <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		// The goroutine stays parked on the terminal until the next line.
		return "", ErrInputCancelled
	case res := <-done:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
