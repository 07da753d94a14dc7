// Package keymap translates human-readable key and button names into the
// tokens the injection layer understands. The alias table is fully
// enumerated at init so resolution is pure and total over the documented
// set: no reflection, no per-call allocation.
package keymap

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// ErrUnknownKey marks a key or button name the alias table cannot resolve.
var ErrUnknownKey = errors.New("unknown key")

var aliases = map[string]string{
	// Modifiers
	"ctrl": "ctrl", "control": "ctrl", "lctrl": "lctrl", "rctrl": "rctrl",
	"alt": "alt", "option": "alt", "lalt": "lalt", "ralt": "ralt",
	"shift": "shift", "lshift": "lshift", "rshift": "rshift",
	"win": "cmd", "cmd": "cmd", "command": "cmd", "super": "cmd",
	"lwin": "lcmd", "lcmd": "lcmd", "rwin": "rcmd", "rcmd": "rcmd",

	// Specials
	"enter": "enter", "return": "enter",
	"esc": "esc", "escape": "esc",
	"space": "space", "spacebar": "space",
	"tab": "tab", "backspace": "backspace",
	"delete": "delete", "del": "delete",
	"insert": "insert", "ins": "insert",
	"home": "home", "end": "end",
	"pageup": "pageup", "page_up": "pageup", "pgup": "pageup",
	"pagedown": "pagedown", "page_down": "pagedown", "pgdn": "pagedown",
	"printscreen": "printscreen", "print_screen": "printscreen", "prtsc": "printscreen",
	"capslock": "capslock", "caps_lock": "capslock",
	"numlock": "num_lock", "num_lock": "num_lock",

	// Arrows, with every alias users actually type
	"up": "up", "uparrow": "up", "up_arrow": "up", "arrow_up": "up",
	"down": "down", "downarrow": "down", "down_arrow": "down", "arrow_down": "down",
	"left": "left", "leftarrow": "left", "left_arrow": "left", "arrow_left": "left",
	"right": "right", "rightarrow": "right", "right_arrow": "right", "arrow_right": "right",

	// Numpad operators
	"numpad_add": "num+", "num_add": "num+", "numpad_plus": "num+",
	"numpad_subtract": "num-", "num_sub": "num-", "numpad_minus": "num-",
	"numpad_multiply": "num*", "num_mul": "num*",
	"numpad_divide": "num/", "num_div": "num/",
	"numpad_decimal": "num.", "num_decimal": "num.",
	"numpad_enter": "num_enter", "num_enter": "num_enter",
	"numpad_equal": "num_equal", "num_equal": "num_equal",
}

func init() {
	// Function keys f1-f24 and numpad digits
	for i := 1; i <= 24; i++ {
		name := fmt.Sprintf("f%d", i)
		aliases[name] = name
	}
	for i := 0; i <= 9; i++ {
		token := fmt.Sprintf("num%d", i)
		aliases[fmt.Sprintf("numpad%d", i)] = token
		aliases[token] = token
	}
}

// Resolve maps a human-readable key name to the injection-layer token.
// Matching is case-insensitive; single printable characters map to
// themselves in lower case.
func Resolve(name string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return "", errors.Wrap(ErrUnknownKey, "empty key name")
	}
	if token, ok := aliases[s]; ok {
		return token, nil
	}
	r := []rune(s)
	if len(r) == 1 && unicode.IsPrint(r[0]) && !unicode.IsSpace(r[0]) {
		return s, nil
	}
	return "", errors.Wrapf(ErrUnknownKey, "%q", name)
}

// ResolveButton maps a mouse button name to the injection-layer token.
// An empty name means the left button.
func ResolveButton(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "left":
		return "left", nil
	case "right":
		return "right", nil
	case "middle", "center", "wheel":
		return "center", nil
	default:
		return "", errors.Wrapf(ErrUnknownKey, "mouse button %q", name)
	}
}
