package window

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

type fakeQuery struct {
	title string
	err   error
	calls int
}

func (q *fakeQuery) ActiveWindowTitle() (string, error) {
	q.calls++
	return q.title, q.err
}

func TestGateMatchesSubstring(t *testing.T) {
	q := &fakeQuery{title: "World of Warcraft - Retail"}
	g := New(q, []string{"World of Warcraft"}, WithCacheInterval(0))
	assert.True(t, g.Active())

	q.title = "Notepad"
	assert.False(t, g.Active())
}

func TestGateCaseInsensitiveByDefault(t *testing.T) {
	q := &fakeQuery{title: "WORLD OF WARCRAFT"}
	g := New(q, []string{"world of warcraft"}, WithCacheInterval(0))
	assert.True(t, g.Active())
}

func TestGateCaseSensitiveOption(t *testing.T) {
	q := &fakeQuery{title: "WORLD OF WARCRAFT"}
	g := New(q, []string{"World of Warcraft"}, WithCacheInterval(0), WithCaseSensitive())
	assert.False(t, g.Active())
}

func TestGateQueryErrorReadsInactive(t *testing.T) {
	q := &fakeQuery{err: errors.Wrap(ErrQuery, "boom")}
	g := New(q, []string{"World of Warcraft"}, WithCacheInterval(0))
	assert.False(t, g.Active())
}

func TestGateEmptyTitlesAlwaysOpen(t *testing.T) {
	q := &fakeQuery{err: errors.New("should not be called")}
	g := New(q, nil)
	assert.True(t, g.Active())
	assert.Zero(t, q.calls)
}

func TestGateCachesResult(t *testing.T) {
	now := time.Now()
	q := &fakeQuery{title: "World of Warcraft"}
	g := New(q, []string{"World of Warcraft"},
		WithCacheInterval(300*time.Millisecond),
		WithNowFunc(func() time.Time { return now }))

	for i := 0; i < 10; i++ {
		assert.True(t, g.Active())
	}
	assert.Equal(t, 1, q.calls)

	// Expiring the cache triggers exactly one fresh query.
	now = now.Add(301 * time.Millisecond)
	q.title = "Notepad"
	for i := 0; i < 10; i++ {
		assert.False(t, g.Active())
	}
	assert.Equal(t, 2, q.calls)
}
