package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{name: "with custom writer", writer: &bytes.Buffer{}},
		{name: "with nil writer", writer: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestInterrupt_CancelsContextOnce(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output)
	ctx := handler.HandleInterrupts(context.Background(), true)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	handler.interrupt()
	handler.interrupt()

	<-ctx.Done()
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Interrupted!"))
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name        string
		expected    string
		notExpected string
		resumable   bool
	}{
		{name: "resumable", resumable: true, expected: "Run the command again", notExpected: "Nothing was changed"},
		{name: "atomic", resumable: false, expected: "Nothing was changed", notExpected: "Run the command again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			handler := &InterruptHandler{writer: &output, resumable: tt.resumable}

			handler.showInterruptMessage()

			assert.Contains(t, output.String(), "Interrupted!")
			assert.Contains(t, output.String(), tt.expected)
			assert.NotContains(t, output.String(), tt.notExpected)
		})
	}
}
