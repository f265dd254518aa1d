package shutdown

import (
	"context"
	"errors"
	"testing"
)

func TestShutdownRunsCleanupsAndCancels(t *testing.T) {
	h := New()

	var ran []string
	h.AddCleanup(func() { ran = append(ran, "first") })
	h.AddCleanup(func() { ran = append(ran, "second") })

	h.Shutdown()

	if !errors.Is(h.Context().Err(), context.Canceled) {
		t.Errorf("Context().Err() = %v, want context.Canceled", h.Context().Err())
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Errorf("cleanups ran as %v, want [first second] in registration order", ran)
	}
}

func TestContextLiveBeforeShutdown(t *testing.T) {
	h := New()
	if err := h.Context().Err(); err != nil {
		t.Errorf("Context().Err() = %v before shutdown, want nil", err)
	}
}
