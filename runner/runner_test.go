package runner

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"tileloom/catalog"
)

func permissiveTile(id, key string) catalog.TileDef {
	edges := [4][]catalog.EdgeRule{}
	for i := range edges {
		edges[i] = []catalog.EdgeRule{{Key: key, Weight: 1}}
	}
	return catalog.TileDef{ID: id, File: id + ".png", Weight: 1, Edges: edges}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func drain(t *testing.T, r *Runner, timeout time.Duration) []any {
	t.Helper()
	var msgs []any
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-r.Out():
			msgs = append(msgs, msg)
			if _, ok := msg.(DoneMsg); ok {
				return msgs
			}
			if _, ok := msg.(ErrorMsg); ok {
				return msgs
			}
		case <-deadline:
			return msgs
		}
	}
}

func TestInitThenRunReachesDone(t *testing.T) {
	r := New(testLogger())
	r.Handle(InitCmd{
		Tiles: []catalog.TileDef{permissiveTile("a", "x")},
		GridW: 3,
		GridH: 3,
		Opts:  InitOpts{Seed: 1, MaxRestarts: 2},
	})

	init := <-r.Out()
	if s, ok := init.(StateMsg); !ok || s.Mode != ModePaused {
		t.Fatalf("expected paused state after init, got %#v", init)
	}

	r.Handle(RunCmd{})
	running := <-r.Out()
	if s, ok := running.(StateMsg); !ok || s.Mode != ModeRunning {
		t.Fatalf("expected running state, got %#v", running)
	}

	msgs := drain(t, r, 2*time.Second)
	var sawDone bool
	var collapsed int
	for _, m := range msgs {
		switch v := m.(type) {
		case BatchMsg:
			collapsed += len(v.Collapsed)
		case DoneMsg:
			sawDone = true
		case ErrorMsg:
			t.Fatalf("unexpected error message: %+v", v)
		}
	}
	if !sawDone {
		t.Fatal("expected a DoneMsg before the drain timeout")
	}
	if collapsed != 9 {
		t.Errorf("expected 9 collapsed cells reported, got %d", collapsed)
	}
}

func TestStepCmdPerformsExactlyOneChunk(t *testing.T) {
	r := New(testLogger())
	r.Handle(InitCmd{
		Tiles: []catalog.TileDef{permissiveTile("a", "x")},
		GridW: 2,
		GridH: 2,
		Opts:  InitOpts{Seed: 1, MaxRestarts: 0},
	})
	<-r.Out() // initial paused state

	r.Handle(StepCmd{Collapses: 1})

	msgs := drain(t, r, 300*time.Millisecond)
	var collapsed int
	for _, m := range msgs {
		if b, ok := m.(BatchMsg); ok {
			collapsed += len(b.Collapsed)
		}
	}
	if collapsed != 1 {
		t.Errorf("expected exactly 1 collapse from a single step, got %d", collapsed)
	}
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	r := New(testLogger())
	r.Handle(struct{ Foo string }{Foo: "bar"})
	select {
	case msg := <-r.Out():
		t.Fatalf("expected no output for an unknown command, got %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
