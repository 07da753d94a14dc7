package automation

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// fakeClock records sleeps and advances instantly, so timing assertions
// never depend on the wall clock.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// cancelAfter, when set, cancels the context after that many sleeps.
	cancelAfter int
	cancelFn    context.CancelFunc
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	n := len(c.sleeps)
	cancel := c.cancelFn != nil && c.cancelAfter > 0 && n >= c.cancelAfter
	c.mu.Unlock()
	if cancel {
		c.cancelFn()
		return ctx.Err()
	}
	return nil
}

func (c *fakeClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

func (c *fakeClock) reset() {
	c.mu.Lock()
	c.sleeps = nil
	c.mu.Unlock()
}

type injEvent struct {
	op  string // key_down, key_up, mouse_down, mouse_up, move
	arg string
	x   int
	y   int
}

// fakeInjector records every event; individual operations can be made
// to fail to exercise the skip-and-continue policy.
type fakeInjector struct {
	mu     sync.Mutex
	events []injEvent
	x, y   int

	failKeyDown   bool
	failMouseDown bool
}

func (f *fakeInjector) record(ev injEvent) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
}

func (f *fakeInjector) KeyDown(key string) error {
	if f.failKeyDown {
		return errors.Wrap(ErrInjection, "synthetic input refused")
	}
	f.record(injEvent{op: "key_down", arg: key})
	return nil
}

func (f *fakeInjector) KeyUp(key string) error {
	f.record(injEvent{op: "key_up", arg: key})
	return nil
}

func (f *fakeInjector) MouseDown(button string) error {
	if f.failMouseDown {
		return errors.Wrap(ErrInjection, "synthetic input refused")
	}
	f.record(injEvent{op: "mouse_down", arg: button})
	return nil
}

func (f *fakeInjector) MouseUp(button string) error {
	f.record(injEvent{op: "mouse_up", arg: button})
	return nil
}

func (f *fakeInjector) MouseMove(x, y int) error {
	f.mu.Lock()
	f.x, f.y = x, y
	f.events = append(f.events, injEvent{op: "move", x: x, y: y})
	f.mu.Unlock()
	return nil
}

func (f *fakeInjector) MousePosition() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

func (f *fakeInjector) all() []injEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]injEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeInjector) count(op, arg string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.op == op && ev.arg == arg {
			n++
		}
	}
	return n
}

func (f *fakeInjector) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeGate is a switchable window gate.
type fakeGate struct {
	mu   sync.Mutex
	open bool
}

func (g *fakeGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func (g *fakeGate) set(open bool) {
	g.mu.Lock()
	g.open = open
	g.mu.Unlock()
}
