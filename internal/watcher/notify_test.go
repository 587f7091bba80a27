package watcher

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) run(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestNotifier_Linux(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{goos: "linux", run: rec.run}
	require.NoError(t, n.Notify(Alert{Level: "critical", Title: "New finding: errors.bare_except", Message: "line 3"}))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"notify-send", "pspec: New finding: errors.bare_except", "line 3"}, rec.calls[0])
}

func TestNotifier_Darwin(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{goos: "darwin", run: rec.run}
	require.NoError(t, n.Notify(Alert{Level: "info", Title: "Review clean", Message: "done"}))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.Contains(t, rec.calls[0][2], `subtitle "Review clean"`)
}

func TestNotifier_FallsBack(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{err: errors.New("missing")}
	n := &Notifier{goos: "linux", run: rec.run, Fallback: &buf}
	require.NoError(t, n.Notify(Alert{Level: "warning", Title: "T", Message: "M"}))
	assert.Equal(t, "[warning] T: M\n", buf.String())

	buf.Reset()
	n = &Notifier{goos: "plan9", run: rec.run, Fallback: &buf}
	require.NoError(t, n.Notify(Alert{Level: "info", Title: "T", Message: "M"}))
	assert.Equal(t, "[info] T: M\n", buf.String())
}

func TestNotifier_MinLevel(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{goos: "linux", run: rec.run, MinLevel: "warning"}
	require.NoError(t, n.Notify(Alert{Level: "info", Title: "Resolved"}))
	assert.Empty(t, rec.calls)
	require.NoError(t, n.Notify(Alert{Level: "critical", Title: "New"}))
	assert.Len(t, rec.calls, 1)
}

func TestNewNotifier(t *testing.T) {
	n := NewNotifier("warning")
	assert.Equal(t, "warning", n.MinLevel)
	assert.NotEmpty(t, n.goos)
	assert.NotNil(t, n.run)
}
