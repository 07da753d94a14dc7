package model

import "time"

// Sequence run modes
const (
	ModeOnce     = "once"
	ModePeriodic = "periodic"
)

// Action types
const (
	TypeKey       = "key"
	TypeMouse     = "mouse"
	TypeWait      = "wait"
	TypeSuperwait = "superwait" // shorthand for a wait with superwait=true
	TypeRepeat    = "repeat"    // nested action list run on its own cadence
)

// Action verbs
const (
	VerbPress = "press"
	VerbHold  = "hold"
	VerbDown  = "down"
	VerbUp    = "up"
	VerbClick = "click"
	VerbMove  = "move"
)

// Action represents a single keyboard, mouse or wait operation
type Action struct {
	Type      string   `json:"type"`                // Operation type: key, mouse, wait
	Action    string   `json:"action,omitempty"`    // Verb within the type: press, hold, down, up, click, move
	Key       string   `json:"key,omitempty"`       // Key name for type=key
	Button    string   `json:"button,omitempty"`    // Mouse button: left, right, middle
	X         *int     `json:"x,omitempty"`         // Mouse X coordinate
	Y         *int     `json:"y,omitempty"`         // Mouse Y coordinate
	Duration  *float64 `json:"duration,omitempty"`  // Base duration in milliseconds
	Seconds   *float64 `json:"seconds,omitempty"`   // Wait duration in seconds (older files)
	Clicks    int      `json:"clicks,omitempty"`    // Number of clicks for mouse click
	Interval  float64  `json:"interval,omitempty"`  // Milliseconds between repeated clicks
	Chance    *int     `json:"chance,omitempty"`    // 1-100 execution probability, default 100
	Superwait bool     `json:"superwait,omitempty"` // Use the exact duration, no jitter
	Every     float64  `json:"every,omitempty"`     // Seconds between repeat iterations
	Count     *int     `json:"count,omitempty"`     // Repeat iterations, unbounded when absent
	Actions   []Action `json:"actions,omitempty"`   // Nested actions for type=repeat
}

// Sequence is a named, ordered list of actions with a run mode
type Sequence struct {
	Name            string   `json:"-"`
	Mode            string   `json:"mode,omitempty"`             // once or periodic
	IntervalSeconds float64  `json:"interval_seconds,omitempty"` // Time between periodic runs
	Every           float64  `json:"every,omitempty"`            // Older spelling of interval_seconds
	Actions         []Action `json:"actions"`
}

// ChanceOrDefault returns the action's chance, defaulting to 100.
func (a Action) ChanceOrDefault() int {
	if a.Chance == nil {
		return 100
	}
	return *a.Chance
}

// BaseDuration returns the explicit duration of the action, if any.
// Duration is given in milliseconds; Seconds is the older wait field.
func (a Action) BaseDuration() (time.Duration, bool) {
	if a.Duration != nil {
		return time.Duration(*a.Duration * float64(time.Millisecond)), true
	}
	if a.Seconds != nil {
		return time.Duration(*a.Seconds * float64(time.Second)), true
	}
	return 0, false
}

// HasCoordinates reports whether the action carries a mouse target.
func (a Action) HasCoordinates() bool {
	return a.X != nil && a.Y != nil
}

// IsWait reports whether the action is a wait of either spelling.
func (a Action) IsWait() bool {
	return a.Type == TypeWait || a.Type == TypeSuperwait
}

// Exact reports whether the action's duration bypasses jitter.
func (a Action) Exact() bool {
	return a.Superwait || a.Type == TypeSuperwait
}

// Interval returns the periodic interval in whichever field it was given.
func (s Sequence) Interval() float64 {
	if s.IntervalSeconds > 0 {
		return s.IntervalSeconds
	}
	return s.Every
}

// Periodic reports whether the sequence reruns on an interval.
func (s Sequence) Periodic() bool {
	return s.Mode == ModePeriodic
}
