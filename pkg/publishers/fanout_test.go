package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubPublisher struct {
	id     string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return "stub" }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestFanoutCountsSuccessesAndJoinsErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok"}
	bad := &stubPublisher{id: "bad", err: errors.New("refused")}
	fanout := NewFanout([]Publisher{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("nil publishers must be skipped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Event{State: StateEmpty})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "stub publisher[bad]: refused") {
		t.Fatalf("unexpected aggregated error %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("every publisher must be called once")
	}
}

func TestFanoutNilIsNoop(t *testing.T) {
	var fanout *Fanout
	if n, err := fanout.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout publish = %d, %v", n, err)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("nil fanout close: %v", err)
	}
}

func TestFanoutCloseReachesClosers(t *testing.T) {
	p := &stubPublisher{id: "c"}
	if err := NewFanout([]Publisher{p}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed {
		t.Fatalf("publisher was not closed")
	}
}

func TestBuildAllClosesBuiltPublishersOnError(t *testing.T) {
	built := &stubPublisher{id: "first"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "missing"},
	}, nil)
	if err == nil {
		t.Fatalf("expected unknown type error")
	}
	if !built.closed {
		t.Fatalf("already built publisher leaked")
	}
}

func TestDefaultRegistryBuildsHTTP(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "hook", Type: "HTTP", HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP {
		t.Fatalf("unexpected publishers %#v", pubs)
	}
}
