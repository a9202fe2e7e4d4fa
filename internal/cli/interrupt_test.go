package cli

import (
	"bytes"
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptHandler_SignalCancelsContext(t *testing.T) {
	var output bytes.Buffer
	h := NewInterruptHandler(&output)

	ctx := h.HandleInterrupts(context.Background(), true)
	require.NoError(t, ctx.Err())
	assert.False(t, h.WasInterrupted())

	// Deliver SIGTERM to ourselves.
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled after signal")
	}

	assert.True(t, h.WasInterrupted())
	assert.Contains(t, output.String(), "Sync interrupted!")
	assert.Contains(t, output.String(), "resume from the last cursor")
}

func TestInterruptHandler_NoProgressMessage(t *testing.T) {
	var output bytes.Buffer
	h := NewInterruptHandler(&output)

	ctx := h.HandleInterrupts(context.Background(), false)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled after signal")
	}

	assert.NotContains(t, output.String(), "resume from the last cursor")
}

func TestInterruptHandler_ParentCancellation(t *testing.T) {
	h := NewInterruptHandler(&bytes.Buffer{})

	parent, cancel := context.WithCancel(context.Background())
	ctx := h.HandleInterrupts(parent, false)

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context did not follow parent cancellation")
	}

	assert.False(t, h.WasInterrupted())
}
