// Package window answers whether the target application currently owns
// OS input focus. The query is polled and cached, never event-driven.
package window

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

// ErrQuery marks a failed foreground-window query.
var ErrQuery = errors.New("window query")

// TitleQuery is the narrow capability the gate needs from the OS.
type TitleQuery interface {
	ActiveWindowTitle() (string, error)
}

// DefaultCacheInterval bounds how often the OS is asked for the
// foreground window while many sequences poll the gate each tick.
const DefaultCacheInterval = 300 * time.Millisecond

// Gate reports whether the foreground window matches any target title.
type Gate struct {
	query         TitleQuery
	titles        []string
	caseSensitive bool
	interval      time.Duration
	now           func() time.Time
	log           *zap.SugaredLogger

	mu         sync.Mutex
	lastCheck  time.Time
	lastResult bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithCaseSensitive switches title matching to case-sensitive.
func WithCaseSensitive() Option {
	return func(g *Gate) { g.caseSensitive = true }
}

// WithCacheInterval sets how long a query result is reused.
func WithCacheInterval(d time.Duration) Option {
	return func(g *Gate) { g.interval = d }
}

// WithNowFunc overrides the clock used for cache expiry.
func WithNowFunc(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger sets the gate's logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(g *Gate) { g.log = log }
}

// New builds a gate matching the foreground window title against the
// given substrings. An empty title list disables gating: the gate is
// always open.
func New(query TitleQuery, titles []string, opts ...Option) *Gate {
	g := &Gate{
		query:    query,
		titles:   titles,
		interval: DefaultCacheInterval,
		now:      time.Now,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Active reports whether a target window currently has focus. The answer
// is cached for the configured interval; a failed query reads as
// inactive so automation pauses rather than typing into the wrong
// window.
func (g *Gate) Active() bool {
	if len(g.titles) == 0 {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.lastCheck.IsZero() && now.Sub(g.lastCheck) < g.interval {
		return g.lastResult
	}
	g.lastCheck = now

	title, err := g.query.ActiveWindowTitle()
	if err != nil {
		g.log.Warnw("window query failed, treating as inactive", "error", err)
		g.lastResult = false
		return false
	}
	g.lastResult = g.matches(title)
	return g.lastResult
}

func (g *Gate) matches(title string) bool {
	if !g.caseSensitive {
		title = strings.ToLower(title)
	}
	for _, target := range g.titles {
		if !g.caseSensitive {
			target = strings.ToLower(target)
		}
		if strings.Contains(title, target) {
			return true
		}
	}
	return false
}

// RobotQuery asks the OS for the foreground window title.
type RobotQuery struct{}

// NewRobotQuery returns the production TitleQuery.
func NewRobotQuery() RobotQuery { return RobotQuery{} }

// ActiveWindowTitle returns the title of the focused window.
func (RobotQuery) ActiveWindowTitle() (title string, err error) {
	// robotgo panics on some platforms when no window has focus
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrQuery, "get title: %v", r)
		}
	}()
	return robotgo.GetTitle(), nil
}
