package automation

import (
	"github.com/cockroachdb/errors"
	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

// ErrInjection marks a synthetic input event the OS refused or failed to
// deliver. Callers treat the action as skipped; it never aborts a
// sequence.
var ErrInjection = errors.New("input injection")

// Injector is the narrow capability the executor drives. Production
// builds use the robotgo implementation; dry runs and tests substitute
// their own.
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	MouseDown(button string) error
	MouseUp(button string) error
	MouseMove(x, y int) error
	MousePosition() (x, y int)
}

// RobotInjector delivers input through robotgo.
type RobotInjector struct{}

// NewRobotInjector returns the production injector.
func NewRobotInjector() RobotInjector { return RobotInjector{} }

// guard converts robotgo panics into injection errors so a refused
// event cannot crash the run.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInjection, "%s: %v", op, r)
		}
	}()
	if e := fn(); e != nil {
		return errors.Wrapf(ErrInjection, "%s: %v", op, e)
	}
	return nil
}

func (RobotInjector) KeyDown(key string) error {
	return guard("key down "+key, func() error { return robotgo.KeyDown(key) })
}

func (RobotInjector) KeyUp(key string) error {
	return guard("key up "+key, func() error { return robotgo.KeyUp(key) })
}

func (RobotInjector) MouseDown(button string) error {
	return guard("mouse down "+button, func() error { return robotgo.Toggle(button) })
}

func (RobotInjector) MouseUp(button string) error {
	return guard("mouse up "+button, func() error { return robotgo.Toggle(button, "up") })
}

func (RobotInjector) MouseMove(x, y int) error {
	return guard("mouse move", func() error {
		robotgo.Move(x, y)
		return nil
	})
}

func (RobotInjector) MousePosition() (int, int) {
	return robotgo.Location()
}

// NopInjector performs no input. It logs every operation so a dry run
// shows exactly what a real run would do.
type NopInjector struct {
	log *zap.SugaredLogger

	x, y int
}

// NewNopInjector returns an injector for dry runs.
func NewNopInjector(log *zap.SugaredLogger) *NopInjector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &NopInjector{log: log}
}

func (n *NopInjector) KeyDown(key string) error {
	n.log.Infow("dry-run key down", "key", key)
	return nil
}

func (n *NopInjector) KeyUp(key string) error {
	n.log.Infow("dry-run key up", "key", key)
	return nil
}

func (n *NopInjector) MouseDown(button string) error {
	n.log.Infow("dry-run mouse down", "button", button)
	return nil
}

func (n *NopInjector) MouseUp(button string) error {
	n.log.Infow("dry-run mouse up", "button", button)
	return nil
}

func (n *NopInjector) MouseMove(x, y int) error {
	n.x, n.y = x, y
	return nil
}

func (n *NopInjector) MousePosition() (int, int) {
	return n.x, n.y
}
