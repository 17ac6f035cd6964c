package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{name: "answers in order", input: "1900.00\ns\nc\n", want: []string{"1900.00", "s", "c"}},
		{name: "trims padding", input: "  2 150  \n", want: []string{"2 150"}},
		{name: "blank accepts default", input: "\n", want: []string{""}},
		{name: "last line without newline", input: "c", want: []string{"c"}},
		{name: "eof", input: "", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))
			for _, want := range tt.want {
				got, err := r.ReadLine(context.Background())
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			if tt.wantErr != nil {
				_, err := r.ReadLine(context.Background())
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLineReader_Cancellation(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLineReader(strings.NewReader("c\n")).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() {
			_ = pw.Close()
			_ = pr.Close()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewLineReader(pr).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})
}

func TestNewLineReader_Nil(t *testing.T) {
	assert.Panics(t, func() { NewLineReader(nil) })
}
