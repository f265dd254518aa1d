package metadata

import (
	"context"
	"fmt"
	"testing"

	"metatagger/internal/logger"
)

type chainMockProvider struct {
	name  string
	track Track
	err   error
	calls int
}

func (m *chainMockProvider) Name() string { return m.name }
func (m *chainMockProvider) Lookup(_ context.Context, _, _ string) (Track, error) {
	m.calls++
	return m.track, m.err
}

func TestChainProvider_FirstSuccess(t *testing.T) {
	p1 := &chainMockProvider{name: "first", track: Track{Title: "from-first"}}
	p2 := &chainMockProvider{name: "second", track: Track{Title: "from-second"}}

	chain := NewChainProvider([]Provider{p1, p2}, logger.New(false))
	track, err := chain.Lookup(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "from-first" {
		t.Errorf("expected result from first provider, got %+v", track)
	}
	if p2.calls != 0 {
		t.Errorf("second provider should not be queried, got %d calls", p2.calls)
	}
}

func TestChainProvider_FallbackOnError(t *testing.T) {
	p1 := &chainMockProvider{name: "failing", err: fmt.Errorf("api down")}
	p2 := &chainMockProvider{name: "fallback", track: Track{Title: "from-fallback"}}

	chain := NewChainProvider([]Provider{p1, p2}, logger.New(false))
	track, err := chain.Lookup(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "from-fallback" {
		t.Errorf("expected result from fallback provider, got %+v", track)
	}
}

func TestChainProvider_FallbackOnEmpty(t *testing.T) {
	p1 := &chainMockProvider{name: "empty"}
	p2 := &chainMockProvider{name: "has-result", track: Track{Title: "found"}}

	chain := NewChainProvider([]Provider{p1, p2}, logger.New(false))
	track, err := chain.Lookup(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "found" {
		t.Errorf("expected result from second provider, got %+v", track)
	}
}

func TestChainProvider_AllFail(t *testing.T) {
	p1 := &chainMockProvider{name: "fail1", err: fmt.Errorf("error1")}
	p2 := &chainMockProvider{name: "fail2", err: fmt.Errorf("error2")}

	chain := NewChainProvider([]Provider{p1, p2}, logger.New(false))
	track, err := chain.Lookup(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !track.IsEmpty() {
		t.Errorf("expected empty track, got %+v", track)
	}
}

func TestChainProvider_Name(t *testing.T) {
	chain := NewChainProvider(nil, logger.New(false))
	if chain.Name() != "chain" {
		t.Errorf("Name() = %q, want %q", chain.Name(), "chain")
	}
}
