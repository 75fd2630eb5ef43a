package service

import (
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events map[string][]protocol.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{events: make(map[string][]protocol.Event)}
}

func (b *recordingBroadcaster) Deliver(playerID string, ev protocol.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[playerID] = append(b.events[playerID], ev)
}

func (b *recordingBroadcaster) types(playerID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events[playerID]))
	for _, ev := range b.events[playerID] {
		out = append(out, ev.Type())
	}
	return out
}

func (b *recordingBroadcaster) last(playerID string) protocol.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	evs := b.events[playerID]
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.events)
}

// testRules never ticks on its own within a test and never shrinks.
func testRules() game.Rules {
	r := game.DefaultRules()
	r.TickPeriod = time.Hour
	r.ShrinkAfter = time.Hour
	return r
}

func newStartedLobby(t *testing.T, rules game.Rules, clock *fakeClock) *Lobby {
	t.Helper()
	l := NewLobby("TEST22", rules, clock.Now)
	if _, started, err := l.Join("a"); err != nil || started {
		t.Fatalf("join a: started=%v err=%v", started, err)
	}
	if _, started, err := l.Join("b"); err != nil || !started {
		t.Fatalf("join b: started=%v err=%v", started, err)
	}
	return l
}

func mustTick(t *testing.T, l *Lobby, clock *fakeClock, step time.Duration) (protocol.GameState, bool) {
	t.Helper()
	clock.Advance(step)
	snap, ended, ok := l.Tick()
	if !ok {
		t.Fatalf("tick did not run")
	}
	return snap, ended
}

func playerState(t *testing.T, snap protocol.GameState, id string) protocol.PlayerState {
	t.Helper()
	for _, p := range snap.Players {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("player %q missing from snapshot", id)
	return protocol.PlayerState{}
}

func eventKinds(evs []protocol.MatchEvent) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind())
	}
	return out
}
