package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/review"
)

func analysisOnly() review.Options {
	opts := review.DefaultOptions()
	opts.Style = false
	opts.BestPractice = false
	return opts
}

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestSnapshot_MissingFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope.py"), time.Minute, analysisOnly(), nil)
	_, err := w.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestSnapshot_Items(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, path, "try:\n    x()\nexcept:\n    pass\n", time.Now())

	var reviewed int
	w := New(path, time.Minute, analysisOnly(), nil)
	w.OnReview = func(string, *review.Result) { reviewed++ }

	state, err := w.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed)
	assert.NotEmpty(t, state.RunID)
	assert.Contains(t, state.Items, "finding:errors.bare_except:3")
	assert.Contains(t, state.Items, "finding:errors.silent_catch:3")
	assert.NotNil(t, state.Result())
}

func TestCheck_AppearedAndResolved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	base := time.Now().Add(-time.Hour)
	writeFile(t, path, "x = 1\n", base)

	w := New(path, time.Minute, analysisOnly(), nil)
	_, err := w.Baseline(context.Background())
	require.NoError(t, err)

	// Unchanged file: no review, no alerts.
	assert.Empty(t, w.Check(context.Background()))

	writeFile(t, path, "x = 1\neval(x)\n", base.Add(time.Minute))
	alerts := w.Check(context.Background())
	require.Len(t, alerts, 1)
	assert.Equal(t, "warning", alerts[0].Level)
	assert.Equal(t, "New finding: security.dangerous_eval", alerts[0].Title)
	assert.Equal(t, "line 2: Use of eval/exec", alerts[0].Message)

	writeFile(t, path, "x = 1\n", base.Add(2*time.Minute))
	alerts = w.Check(context.Background())
	require.Len(t, alerts, 2)
	assert.Equal(t, "Resolved finding: security.dangerous_eval", alerts[0].Title)
	assert.Equal(t, "Review clean", alerts[1].Title)
}

func TestCheck_DedupesRepeatedFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, path, "x = 1\n", time.Now())
	w := New(path, time.Minute, analysisOnly(), nil)
	_, err := w.Baseline(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	first := w.Check(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t, "Review failed", first[0].Title)
	assert.Empty(t, w.Check(context.Background()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, path, "x = 1\n", time.Now())
	w := New(path, 10*time.Millisecond, analysisOnly(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_FailsWithoutFile(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope.py"), time.Minute, analysisOnly(), nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}
