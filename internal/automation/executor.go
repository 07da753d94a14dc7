package automation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iceman-twitch/wow-auto/internal/keymap"
	"github.com/iceman-twitch/wow-auto/internal/model"
)

// Default timings. Explicit durations get ±10% jitter unless the action
// is marked superwait; these defaults are jittered the same way.
const (
	defaultPressHold  = 50 * time.Millisecond
	defaultMoveSettle = 55 * time.Millisecond
	clickSettleMin    = 20 * time.Millisecond
	clickSettleMax    = 50 * time.Millisecond
	preKeyDelayMin    = 50 * time.Millisecond
	preKeyDelayMax    = 90 * time.Millisecond
	clickGapMin       = 50 * time.Millisecond
	clickGapMax       = 90 * time.Millisecond
)

// Executor runs single actions: chance gating, timing with jitter, and
// dispatch to the injector. Injection failures are logged and the action
// is treated as skipped; only cancellation propagates to the caller.
type Executor struct {
	inj   Injector
	clock Clock
	log   *zap.SugaredLogger

	mu   sync.Mutex
	rng  *rand.Rand
	held map[string]bool // key tokens this executor has put down and not yet released
	down map[string]bool // mouse buttons, same discipline
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock overrides the executor's clock.
func WithClock(c Clock) ExecutorOption {
	return func(e *Executor) { e.clock = c }
}

// WithSeed makes every random draw reproducible.
func WithSeed(seed int64) ExecutorOption {
	return func(e *Executor) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithExecutorLogger sets the executor's logger.
func WithExecutorLogger(log *zap.SugaredLogger) ExecutorOption {
	return func(e *Executor) { e.log = log }
}

// NewExecutor builds an executor around the given injector.
func NewExecutor(inj Injector, opts ...ExecutorOption) *Executor {
	e := &Executor{
		inj:   inj,
		clock: SystemClock,
		log:   zap.NewNop().Sugar(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		held:  make(map[string]bool),
		down:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one action. The chance draw happens fresh on every call.
// The returned error is non-nil only when ctx was cancelled mid-action.
func (e *Executor) Execute(ctx context.Context, act model.Action) error {
	if !e.rollChance(act) {
		e.log.Debugw("action skipped by chance", "type", act.Type, "chance", act.ChanceOrDefault())
		return nil
	}

	switch act.Type {
	case model.TypeWait, model.TypeSuperwait:
		return e.execWait(ctx, act)
	case model.TypeKey:
		return e.execKey(ctx, act)
	case model.TypeMouse:
		return e.execMouse(ctx, act)
	case model.TypeRepeat:
		return e.execRepeat(ctx, act)
	default:
		// The loader rejects unknown types; anything reaching here was
		// built dynamically and is skipped like a failed injection.
		e.log.Warnw("unknown action type, skipping", "type", act.Type)
		return nil
	}
}

func (e *Executor) execWait(ctx context.Context, act model.Action) error {
	base, _ := act.BaseDuration()
	d := base
	if !act.Exact() {
		d = e.jitter(base)
	}
	e.log.Debugw("wait", "duration", d, "exact", act.Exact())
	return e.clock.Sleep(ctx, d)
}

// execKey dispatches one keyboard action. hold is a timed press: with no
// explicit duration the key comes back up after the jittered default hold
// rather than staying down (down/up is the latching pair).
func (e *Executor) execKey(ctx context.Context, act model.Action) error {
	key, err := keymap.Resolve(act.Key)
	if err != nil {
		e.log.Warnw("unresolvable key, skipping action", "key", act.Key, "error", err)
		return nil
	}

	// Humanizing delay before touching the keyboard
	if err := e.clock.Sleep(ctx, e.between(preKeyDelayMin, preKeyDelayMax)); err != nil {
		return err
	}

	verb := act.Action
	if verb == "" {
		verb = model.VerbPress
	}
	switch verb {
	case model.VerbPress, model.VerbHold:
		if !e.keyDown(key) {
			return nil
		}
		err := e.clock.Sleep(ctx, e.holdDuration(act))
		// Release even when cancelled so no key stays down
		e.keyUp(key)
		return err
	case model.VerbDown:
		e.keyDown(key)
	case model.VerbUp:
		e.keyUp(key)
	}
	return nil
}

func (e *Executor) execMouse(ctx context.Context, act model.Action) error {
	button, err := keymap.ResolveButton(act.Button)
	if err != nil {
		e.log.Warnw("unresolvable button, skipping action", "button", act.Button, "error", err)
		return nil
	}

	verb := act.Action
	if verb == "" {
		verb = model.VerbClick
	}

	if verb == model.VerbMove {
		if !act.HasCoordinates() {
			e.log.Warnw("mouse move without coordinates, skipping")
			return nil
		}
		if err := e.smoothMove(ctx, *act.X, *act.Y); err != nil {
			return err
		}
		return e.clock.Sleep(ctx, e.jitter(defaultMoveSettle))
	}

	// Click and hold variants move first when a target is given, then
	// settle briefly before pressing, like a human would.
	if act.HasCoordinates() {
		if err := e.smoothMove(ctx, *act.X, *act.Y); err != nil {
			return err
		}
		if err := e.clock.Sleep(ctx, e.between(clickSettleMin, clickSettleMax)); err != nil {
			return err
		}
	}

	switch verb {
	case model.VerbClick:
		return e.clickTimes(ctx, button, act)
	case model.VerbHold:
		if !e.mouseDown(button) {
			return nil
		}
		err := e.clock.Sleep(ctx, e.holdDuration(act))
		e.mouseUp(button)
		return err
	case model.VerbDown:
		e.mouseDown(button)
	case model.VerbUp:
		e.mouseUp(button)
	}
	return nil
}

func (e *Executor) clickTimes(ctx context.Context, button string, act model.Action) error {
	clicks := act.Clicks
	if clicks <= 0 {
		clicks = 1
	}
	for i := 0; i < clicks; i++ {
		if !e.mouseDown(button) {
			return nil
		}
		err := e.clock.Sleep(ctx, e.holdDuration(act))
		e.mouseUp(button)
		if err != nil {
			return err
		}
		if i == clicks-1 {
			break
		}
		gap := e.between(clickGapMin, clickGapMax)
		if act.Interval > 0 {
			gap = e.jitter(time.Duration(act.Interval * float64(time.Millisecond)))
		}
		if err := e.clock.Sleep(ctx, gap); err != nil {
			return err
		}
	}
	return nil
}

// execRepeat runs the nested action list count times, or until cancelled
// when count is absent, pausing a jittered every seconds after each
// iteration. Without every the list runs exactly once. Each nested action
// goes through Execute, so nested chance draws stay per-invocation.
func (e *Executor) execRepeat(ctx context.Context, act model.Action) error {
	every := time.Duration(act.Every * float64(time.Second))
	for i := 0; act.Count == nil || i < *act.Count; i++ {
		for _, inner := range act.Actions {
			if err := e.Execute(ctx, inner); err != nil {
				return err
			}
		}
		if every <= 0 {
			break
		}
		if err := e.clock.Sleep(ctx, e.jitter(every)); err != nil {
			return err
		}
	}
	return nil
}

// smoothMove walks the cursor along a quadratic Bezier path with a
// randomly offset control point, so movement never looks ruler-straight.
// The target itself lands within ±2px of the requested point.
func (e *Executor) smoothMove(ctx context.Context, x, y int) error {
	fromX, fromY := e.inj.MousePosition()
	toX := x + e.intBetween(-2, 2)
	toY := y + e.intBetween(-2, 2)
	if fromX == toX && fromY == toY {
		return nil
	}

	dist := math.Hypot(float64(toX-fromX), float64(toY-fromY))
	steps := int(dist / 10)
	if steps < 10 {
		steps = 10
	}
	midX := float64(fromX+toX)/2 + float64(e.intBetween(-20, 20))
	midY := float64(fromY+toY)/2 + float64(e.intBetween(-20, 20))

	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := (1-t)*(1-t)*float64(fromX) + 2*(1-t)*t*midX + t*t*float64(toX)
		py := (1-t)*(1-t)*float64(fromY) + 2*(1-t)*t*midY + t*t*float64(toY)
		if err := e.inj.MouseMove(int(math.Round(px)), int(math.Round(py))); err != nil {
			e.log.Warnw("mouse move failed, skipping action", "error", err)
			return nil
		}
		if i < steps {
			if err := e.clock.Sleep(ctx, e.between(time.Millisecond, 3*time.Millisecond)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReleaseHeld issues compensating up events for every key and button
// this executor has pressed but not released. Called on shutdown so a
// stopped session leaves nothing logically held down.
func (e *Executor) ReleaseHeld() {
	e.mu.Lock()
	held := make([]string, 0, len(e.held))
	for k := range e.held {
		held = append(held, k)
	}
	buttons := make([]string, 0, len(e.down))
	for b := range e.down {
		buttons = append(buttons, b)
	}
	e.held = make(map[string]bool)
	e.down = make(map[string]bool)
	e.mu.Unlock()

	for _, k := range held {
		if err := e.inj.KeyUp(k); err != nil {
			e.log.Warnw("compensating key release failed", "key", k, "error", err)
		} else {
			e.log.Infow("released held key", "key", k)
		}
	}
	for _, b := range buttons {
		if err := e.inj.MouseUp(b); err != nil {
			e.log.Warnw("compensating button release failed", "button", b, "error", err)
		}
	}
}

// HeldKeys returns the key tokens currently tracked as down.
func (e *Executor) HeldKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.held))
	for k := range e.held {
		out = append(out, k)
	}
	return out
}

func (e *Executor) keyDown(key string) bool {
	if err := e.inj.KeyDown(key); err != nil {
		e.log.Warnw("key down failed, skipping action", "key", key, "error", err)
		return false
	}
	e.mu.Lock()
	e.held[key] = true
	e.mu.Unlock()
	return true
}

func (e *Executor) keyUp(key string) {
	e.mu.Lock()
	delete(e.held, key)
	e.mu.Unlock()
	if err := e.inj.KeyUp(key); err != nil {
		e.log.Warnw("key up failed", "key", key, "error", err)
	}
}

func (e *Executor) mouseDown(button string) bool {
	if err := e.inj.MouseDown(button); err != nil {
		e.log.Warnw("mouse down failed, skipping action", "button", button, "error", err)
		return false
	}
	e.mu.Lock()
	e.down[button] = true
	e.mu.Unlock()
	return true
}

func (e *Executor) mouseUp(button string) {
	e.mu.Lock()
	delete(e.down, button)
	e.mu.Unlock()
	if err := e.inj.MouseUp(button); err != nil {
		e.log.Warnw("mouse up failed", "button", button, "error", err)
	}
}

// holdDuration is how long a press or hold keeps the key/button down:
// the explicit duration when given (exact if superwait, jittered
// otherwise), else the jittered default.
func (e *Executor) holdDuration(act model.Action) time.Duration {
	if base, ok := act.BaseDuration(); ok {
		if act.Exact() {
			return base
		}
		return e.jitter(base)
	}
	return e.jitter(defaultPressHold)
}

func (e *Executor) rollChance(act model.Action) bool {
	chance := act.ChanceOrDefault()
	if chance >= 100 {
		return true
	}
	e.mu.Lock()
	draw := e.rng.Intn(100) + 1
	e.mu.Unlock()
	return draw <= chance
}

// jitter scales d by a uniform factor in [0.9, 1.1].
func (e *Executor) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	e.mu.Lock()
	f := 0.9 + e.rng.Float64()*0.2
	e.mu.Unlock()
	return time.Duration(float64(d) * f)
}

func (e *Executor) between(lo, hi time.Duration) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo + time.Duration(e.rng.Int63n(int64(hi-lo)+1))
}

func (e *Executor) intBetween(lo, hi int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo + e.rng.Intn(hi-lo+1)
}

// IsInjectionError reports whether an error came from the injection layer.
func IsInjectionError(err error) bool {
	return errors.Is(err, ErrInjection)
}
