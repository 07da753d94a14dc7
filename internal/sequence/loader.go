// Package sequence parses JSON sequence files into validated in-memory
// definitions. Loading has no side effects: every call returns a fresh
// mapping and never starts any execution.
package sequence

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/iceman-twitch/wow-auto/internal/keymap"
	"github.com/iceman-twitch/wow-auto/internal/model"
)

// ErrFormat marks a malformed or semantically invalid sequence file.
var ErrFormat = errors.New("sequence format")

// LoadFile reads and parses a JSON sequence file.
func LoadFile(path string) (map[string]model.Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "read %s: %v", path, err)
	}
	return Load(data)
}

// Load parses a JSON document into validated sequences. The top level is
// a mapping from sequence name to definition, optionally wrapped in a
// {"sequences": {...}} object. A definition is either an object with
// mode/interval/actions or a bare action array, which reads as a
// one-shot sequence.
func Load(data []byte) (map[string]model.Sequence, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrapf(ErrFormat, "not a JSON object: %v", err)
	}

	// Unwrap the optional "sequences" envelope. Only an object value is
	// an envelope; any other value is a sequence that happens to be
	// named "sequences".
	if raw, ok := top["sequences"]; ok && len(top) == 1 {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil {
			top = inner
		}
	}

	out := make(map[string]model.Sequence, len(top))
	for name, raw := range top {
		seq, err := parseSequence(name, raw)
		if err != nil {
			return nil, err
		}
		if err := validateSequence(seq); err != nil {
			return nil, err
		}
		out[name] = seq
	}
	return out, nil
}

func parseSequence(name string, raw json.RawMessage) (model.Sequence, error) {
	// Bare array form: a one-shot list of actions.
	var actions []model.Action
	if err := json.Unmarshal(raw, &actions); err == nil {
		return model.Sequence{Name: name, Mode: model.ModeOnce, Actions: actions}, nil
	}

	var seq model.Sequence
	if err := json.Unmarshal(raw, &seq); err != nil {
		return model.Sequence{}, errors.Wrapf(ErrFormat, "sequence %q: %v", name, err)
	}
	seq.Name = name
	if seq.Mode == "" {
		if seq.Interval() > 0 {
			seq.Mode = model.ModePeriodic
		} else {
			seq.Mode = model.ModeOnce
		}
	}
	return seq, nil
}

func validateSequence(seq model.Sequence) error {
	switch seq.Mode {
	case model.ModeOnce:
	case model.ModePeriodic:
		if seq.Interval() <= 0 {
			return errors.Wrapf(ErrFormat, "sequence %q: periodic mode requires interval_seconds > 0", seq.Name)
		}
	default:
		return errors.Wrapf(ErrFormat, "sequence %q: unknown mode %q", seq.Name, seq.Mode)
	}

	if len(seq.Actions) == 0 {
		return errors.Wrapf(ErrFormat, "sequence %q: missing actions", seq.Name)
	}
	for i, act := range seq.Actions {
		if err := validateAction(act); err != nil {
			return errors.Wrapf(err, "sequence %q action %d", seq.Name, i)
		}
	}
	return nil
}

var keyVerbs = map[string]bool{
	model.VerbPress: true,
	model.VerbHold:  true,
	model.VerbDown:  true,
	model.VerbUp:    true,
}

var mouseVerbs = map[string]bool{
	model.VerbClick: true,
	model.VerbMove:  true,
	model.VerbHold:  true,
	model.VerbDown:  true,
	model.VerbUp:    true,
}

func validateAction(act model.Action) error {
	if act.Chance != nil && (*act.Chance < 1 || *act.Chance > 100) {
		return errors.Wrapf(ErrFormat, "chance %d out of range [1,100]", *act.Chance)
	}
	if d, ok := act.BaseDuration(); ok && d < 0 {
		return errors.Wrap(ErrFormat, "negative duration")
	}

	switch act.Type {
	case model.TypeKey:
		verb := act.Action
		if verb == "" {
			verb = model.VerbPress
		}
		if !keyVerbs[verb] {
			return errors.Wrapf(ErrFormat, "unrecognized key action %q", act.Action)
		}
		if _, err := keymap.Resolve(act.Key); err != nil {
			return err
		}
	case model.TypeMouse:
		verb := act.Action
		if verb == "" {
			verb = model.VerbClick
		}
		if !mouseVerbs[verb] {
			return errors.Wrapf(ErrFormat, "unrecognized mouse action %q", act.Action)
		}
		if verb == model.VerbMove && !act.HasCoordinates() {
			return errors.Wrap(ErrFormat, "mouse move requires x and y")
		}
		if _, err := keymap.ResolveButton(act.Button); err != nil {
			return err
		}
	case model.TypeWait, model.TypeSuperwait:
		if act.Action != "" {
			return errors.Wrapf(ErrFormat, "wait takes no action verb, got %q", act.Action)
		}
		if _, ok := act.BaseDuration(); !ok {
			return errors.Wrap(ErrFormat, "wait requires duration or seconds")
		}
	case model.TypeRepeat:
		if act.Action != "" {
			return errors.Wrapf(ErrFormat, "repeat takes no action verb, got %q", act.Action)
		}
		if act.Every < 0 {
			return errors.Wrapf(ErrFormat, "negative every %v", act.Every)
		}
		if act.Count != nil && *act.Count < 1 {
			return errors.Wrapf(ErrFormat, "repeat count %d must be >= 1", *act.Count)
		}
		if len(act.Actions) == 0 {
			return errors.Wrap(ErrFormat, "repeat requires nested actions")
		}
		for i, inner := range act.Actions {
			if err := validateAction(inner); err != nil {
				return errors.Wrapf(err, "repeat action %d", i)
			}
		}
	default:
		return errors.Wrapf(ErrFormat, "unrecognized action type %q", act.Type)
	}
	return nil
}
