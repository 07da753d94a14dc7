package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceman-twitch/wow-auto/internal/keymap"
	"github.com/iceman-twitch/wow-auto/internal/model"
)

func TestLoadBasic(t *testing.T) {
	data := []byte(`{
		"rotation": {
			"mode": "periodic",
			"interval_seconds": 5,
			"actions": [
				{"type": "key", "action": "press", "key": "w", "duration": 100},
				{"type": "wait", "duration": 50, "chance": 80}
			]
		},
		"opener": {
			"mode": "once",
			"actions": [
				{"type": "mouse", "action": "click", "button": "left", "x": 100, "y": 200}
			]
		}
	}`)

	seqs, err := Load(data)
	require.NoError(t, err)
	require.Len(t, seqs, 2)

	rot := seqs["rotation"]
	assert.Equal(t, "rotation", rot.Name)
	assert.Equal(t, model.ModePeriodic, rot.Mode)
	assert.Equal(t, 5.0, rot.Interval())
	require.Len(t, rot.Actions, 2)
	assert.Equal(t, 80, rot.Actions[1].ChanceOrDefault())

	op := seqs["opener"]
	assert.Equal(t, model.ModeOnce, op.Mode)
	assert.True(t, op.Actions[0].HasCoordinates())
}

func TestLoadSequencesEnvelope(t *testing.T) {
	data := []byte(`{"sequences": {"s": {"actions": [{"type": "wait", "seconds": 1}]}}}`)
	seqs, err := Load(data)
	require.NoError(t, err)
	require.Contains(t, seqs, "s")
	assert.Equal(t, model.ModeOnce, seqs["s"].Mode)
}

func TestLoadSequenceNamedSequences(t *testing.T) {
	// Only an object value counts as the envelope; an array under the
	// "sequences" key is an ordinary bare-array sequence of that name.
	data := []byte(`{"sequences": [{"type": "key", "key": "a"}]}`)
	seqs, err := Load(data)
	require.NoError(t, err)
	require.Contains(t, seqs, "sequences")
	assert.Equal(t, model.ModeOnce, seqs["sequences"].Mode)
	require.Len(t, seqs["sequences"].Actions, 1)
}

func TestLoadBareArraySequence(t *testing.T) {
	data := []byte(`{"s": [{"type": "key", "key": "a"}]}`)
	seqs, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, model.ModeOnce, seqs["s"].Mode)
	require.Len(t, seqs["s"].Actions, 1)
}

func TestLoadEveryImpliesPeriodic(t *testing.T) {
	data := []byte(`{"s": {"every": 12, "actions": [{"type": "wait", "seconds": 1}]}}`)
	seqs, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, model.ModePeriodic, seqs["s"].Mode)
	assert.Equal(t, 12.0, seqs["s"].Interval())
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))

	_, err = Load([]byte(`[1, 2, 3]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestLoadRejectsInvalidSequences(t *testing.T) {
	cases := map[string]string{
		"missing actions":       `{"s": {"mode": "once"}}`,
		"unknown mode":          `{"s": {"mode": "sometimes", "actions": [{"type": "wait", "seconds": 1}]}}`,
		"periodic no interval":  `{"s": {"mode": "periodic", "actions": [{"type": "wait", "seconds": 1}]}}`,
		"unknown type":          `{"s": {"actions": [{"type": "scroll"}]}}`,
		"unknown key verb":      `{"s": {"actions": [{"type": "key", "action": "tap", "key": "a"}]}}`,
		"unknown mouse verb":    `{"s": {"actions": [{"type": "mouse", "action": "drag"}]}}`,
		"wait with verb":        `{"s": {"actions": [{"type": "wait", "action": "press", "seconds": 1}]}}`,
		"wait no duration":      `{"s": {"actions": [{"type": "wait"}]}}`,
		"chance too low":        `{"s": {"actions": [{"type": "key", "key": "a", "chance": 0}]}}`,
		"chance too high":       `{"s": {"actions": [{"type": "key", "key": "a", "chance": 101}]}}`,
		"negative duration":     `{"s": {"actions": [{"type": "wait", "duration": -5}]}}`,
		"move no coords":        `{"s": {"actions": [{"type": "mouse", "action": "move"}]}}`,
		"repeat no actions":     `{"s": {"actions": [{"type": "repeat", "every": 5}]}}`,
		"repeat with verb":      `{"s": {"actions": [{"type": "repeat", "action": "press", "actions": [{"type": "wait", "seconds": 1}]}]}}`,
		"repeat zero count":     `{"s": {"actions": [{"type": "repeat", "count": 0, "actions": [{"type": "wait", "seconds": 1}]}]}}`,
		"repeat negative every": `{"s": {"actions": [{"type": "repeat", "every": -1, "actions": [{"type": "wait", "seconds": 1}]}]}}`,
	}
	for name, doc := range cases {
		_, err := Load([]byte(doc))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrFormat), "%s: %v", name, err)
	}
}

func TestLoadRejectsUnknownKeyName(t *testing.T) {
	_, err := Load([]byte(`{"s": {"actions": [{"type": "key", "key": "notakey"}]}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, keymap.ErrUnknownKey))
	// The error names the sequence and action index so the file can be fixed.
	assert.Contains(t, err.Error(), `sequence "s" action 0`)
}

func TestLoadRepeatAction(t *testing.T) {
	data := []byte(`{"s": {"actions": [
		{"type": "repeat", "every": 12, "count": 3, "actions": [
			{"type": "key", "key": "a"},
			{"type": "wait", "duration": 100}
		]}
	]}}`)
	seqs, err := Load(data)
	require.NoError(t, err)
	require.Len(t, seqs["s"].Actions, 1)

	rep := seqs["s"].Actions[0]
	assert.Equal(t, model.TypeRepeat, rep.Type)
	assert.Equal(t, 12.0, rep.Every)
	require.NotNil(t, rep.Count)
	assert.Equal(t, 3, *rep.Count)
	require.Len(t, rep.Actions, 2)
}

func TestLoadRepeatValidatesNestedActions(t *testing.T) {
	data := []byte(`{"s": {"actions": [{"type": "repeat", "actions": [
		{"type": "wait", "seconds": 1},
		{"type": "key", "key": "notakey"}
	]}]}}`)
	_, err := Load(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, keymap.ErrUnknownKey))
	// The error locates the failure through the nesting.
	assert.Contains(t, err.Error(), `sequence "s" action 0`)
	assert.Contains(t, err.Error(), `repeat action 1`)
}

func TestLoadReturnsFreshMapping(t *testing.T) {
	data := []byte(`{"s": {"actions": [{"type": "key", "key": "a"}]}}`)
	first, err := Load(data)
	require.NoError(t, err)
	delete(first, "s")

	second, err := Load(data)
	require.NoError(t, err)
	assert.Contains(t, second, "s")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seqs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"s": {"actions": [{"type": "wait", "seconds": 1}]}}`), 0o644))

	seqs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, seqs, "s")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}
