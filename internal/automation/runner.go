package automation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iceman-twitch/wow-auto/internal/model"
)

// Per-sequence states.
type SeqState string

const (
	StateIdle    SeqState = "idle"    // not started, or waiting for the next periodic run
	StateWaiting SeqState = "waiting" // paused on the window gate or the active flag
	StateRunning SeqState = "running" // dispatching actions
	StateDone    SeqState = "done"    // one-shot sequence finished
)

// SequenceStatus is one sequence's slice of a status snapshot.
type SequenceStatus struct {
	State   SeqState
	NextRun time.Time // next eligible start for periodic sequences
}

// Status is the read-only snapshot a caller polls for display.
type Status struct {
	Running   bool
	Active    bool
	Sequences map[string]SequenceStatus
}

// Gate reports whether dispatching input is currently allowed.
type Gate interface {
	Active() bool
}

// DefaultPollInterval is the backoff used while the window gate or the
// active flag holds a sequence paused.
const DefaultPollInterval = 250 * time.Millisecond

// Runner owns the loaded sequences and coordinates their concurrent
// execution. Each selected sequence runs on its own goroutine so a wait
// inside one never stalls another; the runner checks the window gate
// once per action and pauses progress at the current action index while
// the gate is closed.
type Runner struct {
	exec  *Executor
	gate  Gate
	clock Clock
	log   *zap.SugaredLogger
	poll  time.Duration

	seqs     map[string]model.Sequence
	selected []string

	active  atomic.Bool
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	states  map[string]SeqState
	nextDue map[string]time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerClock overrides the runner's clock.
func WithRunnerClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(log *zap.SugaredLogger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithPollInterval sets the paused-sequence backoff poll.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.poll = d }
}

// WithSelected restricts the run to the named sequences. Names not in
// the loaded set are ignored. Default is every loaded sequence.
func WithSelected(names []string) RunnerOption {
	return func(r *Runner) { r.selected = names }
}

// StartPaused begins the session with dispatch suspended; the scheduling
// loop still runs and resumes instantly on SetActive(true).
func StartPaused() RunnerOption {
	return func(r *Runner) { r.active.Store(false) }
}

// NewRunner builds a runner over an immutable set of loaded sequences.
// Reconfiguring sequences requires a new runner.
func NewRunner(seqs map[string]model.Sequence, exec *Executor, gate Gate, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:    exec,
		gate:    gate,
		clock:   SystemClock,
		log:     zap.NewNop().Sugar(),
		poll:    DefaultPollInterval,
		seqs:    seqs,
		states:  make(map[string]SeqState),
		nextDue: make(map[string]time.Time),
	}
	r.active.Store(true)
	for _, opt := range opts {
		opt(r)
	}
	if r.selected == nil {
		r.selected = make([]string, 0, len(seqs))
		for name := range seqs {
			r.selected = append(r.selected, name)
		}
	}
	for _, name := range r.selected {
		if _, ok := r.seqs[name]; ok {
			r.states[name] = StateIdle
		}
	}
	return r
}

// Start launches one worker per selected sequence. One-shot sequences
// run immediately; periodic sequences run immediately and then every
// interval after the previous run's completion (drift is tolerated, not
// corrected).
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("runner already started")
	}
	ctx, r.cancel = context.WithCancel(ctx)

	for _, name := range r.selected {
		seq, ok := r.seqs[name]
		if !ok {
			r.log.Warnw("selected sequence not loaded, skipping", "sequence", name)
			continue
		}
		r.wg.Add(1)
		go func(seq model.Sequence) {
			defer r.wg.Done()
			r.worker(ctx, seq)
		}(seq)
	}
	return nil
}

// Wait blocks until every worker has finished: naturally for a file of
// one-shot sequences, on cancellation otherwise.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Stop halts all in-flight sequences promptly and releases any key the
// session still holds down. Safe to call more than once; never an error.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.exec.ReleaseHeld()
	r.running.Store(false)
}

// SetActive flips the global dispatch flag. When false the runner keeps
// its scheduling loops alive but pauses every sequence at its current
// action index.
func (r *Runner) SetActive(v bool) {
	prev := r.active.Swap(v)
	if prev != v {
		r.log.Infow("automation toggled", "active", v)
	}
}

// Active reports the global dispatch flag.
func (r *Runner) Active() bool {
	return r.active.Load()
}

// Toggle flips the active flag and returns the new value.
func (r *Runner) Toggle() bool {
	for {
		prev := r.active.Load()
		if r.active.CompareAndSwap(prev, !prev) {
			r.log.Infow("automation toggled", "active", !prev)
			return !prev
		}
	}
}

// Snapshot returns a copy of the runner's visible state for display.
func (r *Runner) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	seqs := make(map[string]SequenceStatus, len(r.states))
	for name, state := range r.states {
		seqs[name] = SequenceStatus{State: state, NextRun: r.nextDue[name]}
	}
	return Status{
		Running:   r.running.Load(),
		Active:    r.active.Load(),
		Sequences: seqs,
	}
}

func (r *Runner) worker(ctx context.Context, seq model.Sequence) {
	log := r.log.With("sequence", seq.Name)

	if !seq.Periodic() {
		if err := r.runActions(ctx, seq); err != nil {
			log.Debugw("sequence cancelled", "error", err)
			return
		}
		r.setState(seq.Name, StateDone)
		log.Debugw("one-shot sequence finished")
		return
	}

	interval := time.Duration(seq.Interval() * float64(time.Second))
	for {
		if err := r.runActions(ctx, seq); err != nil {
			return
		}
		// Interval measured from completion, with the usual ±10% so
		// periodic activity never lands on an exact beat.
		next := r.exec.jitter(interval)
		r.setNextDue(seq.Name, r.clock.Now().Add(next))
		r.setState(seq.Name, StateIdle)
		if err := r.clock.Sleep(ctx, next); err != nil {
			return
		}
	}
}

// runActions executes the sequence's actions strictly in order. Before
// each action it holds at the current index until both the active flag
// and the window gate allow dispatch; a paused action is re-rolled from
// scratch on resume.
func (r *Runner) runActions(ctx context.Context, seq model.Sequence) error {
	for _, act := range seq.Actions {
		if err := r.awaitDispatchable(ctx, seq.Name); err != nil {
			return err
		}
		r.setState(seq.Name, StateRunning)
		if err := r.exec.Execute(ctx, act); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) awaitDispatchable(ctx context.Context, name string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.active.Load() && r.gate.Active() {
			return nil
		}
		r.setState(name, StateWaiting)
		if err := r.clock.Sleep(ctx, r.poll); err != nil {
			return err
		}
	}
}

func (r *Runner) setState(name string, s SeqState) {
	r.mu.Lock()
	r.states[name] = s
	r.mu.Unlock()
}

func (r *Runner) setNextDue(name string, t time.Time) {
	r.mu.Lock()
	r.nextDue[name] = t
	r.mu.Unlock()
}
