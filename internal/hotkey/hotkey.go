// Package hotkey watches the keyboard system-wide for a single toggle
// key and reports each press to a callback. The listener never swallows
// events; everything passes through to the focused application.
package hotkey

import (
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// Listener delivers a toggle event whenever the configured key is
// pressed anywhere in the system.
type Listener struct {
	key      string
	onToggle func()
	log      *zap.SugaredLogger

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// New builds a listener for the given key name. The callback runs on
// the hook goroutine and must return quickly.
func New(key string, onToggle func(), log *zap.SugaredLogger) *Listener {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Listener{
		key:      strings.ToLower(strings.TrimSpace(key)),
		onToggle: onToggle,
		log:      log,
	}
}

// Start begins listening. Calling Start on a running listener is a
// no-op.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.stop = make(chan struct{})

	go l.loop(l.stop)
	l.log.Infow("global hotkey armed", "key", l.key)
}

// Stop ends listening.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	close(l.stop)
}

func (l *Listener) loop(stop chan struct{}) {
	evChan := hook.Start()
	defer hook.End()

	for {
		select {
		case ev := <-evChan:
			if ev.Kind != hook.KeyDown {
				continue
			}
			if l.matches(ev) {
				l.log.Debugw("toggle key pressed", "key", l.key)
				l.onToggle()
			}
		case <-stop:
			return
		}
	}
}

func (l *Listener) matches(ev hook.Event) bool {
	if ev.Keychar != 0 && ev.Keychar != 65535 {
		if strings.EqualFold(string(ev.Keychar), l.key) {
			return true
		}
	}
	// Named keys (f-keys and friends) only carry a raw code.
	return strings.EqualFold(hook.RawcodetoKeychar(ev.Rawcode), l.key)
}
