package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/store"
)

const evalSnippet = "def run(expr):\n    return eval(expr)\n"

// resetFlags restores every package flag variable, since cobra keeps
// values between executions of the same command tree.
func resetFlags() {
	flagNoColor, flagVerbose, flagConfig = true, false, ""
	checkFormat, checkDisable, checkNoBestPractice, checkNoStyle = "", nil, false, false
	checkFailOn, checkSave, checkMaxLineLength, checkIgnore = "", false, 0, nil
	historyLimit, historyShow, historyRules, historyJSON = 20, "", false, false
	rulesJSON = false
	doctorJSON = false
	watchDaemon, watchStop, watchQuiet, watchSave = false, false, false, false
	exitCode = ExitSuccess
}

// execute runs the command tree with an isolated home directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"PSPEC_FAIL_ON", "PSPEC_OUTPUT_FORMAT", "PSPEC_MAX_CODE_LENGTH"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return home
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeReport(t *testing.T, out string) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

func ruleIDs(t *testing.T, report map[string]any) []string {
	t.Helper()
	var ids []string
	findings, _ := report["findings"].([]any)
	for _, f := range findings {
		ids = append(ids, f.(map[string]any)["rule_id"].(string))
	}
	return ids
}

func TestCommands_Registered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"check", "rules", "history", "serve", "mcp", "watch", "doctor", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestCheck_FileJSON(t *testing.T) {
	home := isolateHome(t)
	path := writeSource(t, home, "snippet.py", evalSnippet)

	out, err := execute(t, "", "check", path, "--format", "json")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, "pspec", report["tool"])
	assert.Equal(t, path, report["source"])
	assert.NotEmpty(t, report["run_id"])
	assert.Contains(t, ruleIDs(t, report), "security.dangerous_eval")
	assert.Equal(t, ExitSuccess, exitCode)
}

func TestCheck_StdinWithDisabledEngines(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, evalSnippet, "check", "-", "--format", "json", "--disable", "security,metrics", "--no-style")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, stdinName, report["source"])
	assert.Empty(t, report["issues"])
	for _, id := range ruleIDs(t, report) {
		assert.False(t, strings.HasPrefix(id, "security.") || strings.HasPrefix(id, "metrics."), id)
	}
}

func TestCheck_FailOn(t *testing.T) {
	home := isolateHome(t)
	evalPath := writeSource(t, home, "snippet.py", evalSnippet)
	exceptPath := writeSource(t, home, "except.py", "try:\n    run()\nexcept:\n    pass\n")

	tests := []struct {
		name      string
		path      string
		threshold string
		want      int
	}{
		{"eval is advisory", evalPath, "advisory", ExitFindings},
		{"bare except is a warning", exceptPath, "warning", ExitFindings},
		{"none never fails", exceptPath, "none", ExitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", "check", tt.path, "--format", "json", "--fail-on", tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exitCode)
		})
	}

	_, err := execute(t, "", "check", evalPath, "--format", "json", "--fail-on", "bogus")
	assert.ErrorContains(t, err, "invalid --fail-on")
}

func TestCheck_Errors(t *testing.T) {
	home := isolateHome(t)

	_, err := execute(t, "", "check", filepath.Join(home, "missing.py"))
	assert.ErrorContains(t, err, "reading")

	path := writeSource(t, home, "ok.py", "x = 1\n")
	_, err = execute(t, "", "check", path, "--disable", "lint")
	assert.ErrorIs(t, err, review.ErrUnknownEngine)

	_, err = execute(t, "", "check", path, "--format", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestCheck_TextOutput(t *testing.T) {
	home := isolateHome(t)
	path := writeSource(t, home, "clean.py", "x = 1\n")

	out, err := execute(t, "", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found.")
}

func TestCheck_SaveAndHistory(t *testing.T) {
	home := isolateHome(t)
	path := writeSource(t, home, "snippet.py", evalSnippet)

	out, err := execute(t, "", "check", path, "--format", "json", "--save")
	require.NoError(t, err)
	runID := decodeReport(t, out)["run_id"].(string)

	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	_, err = execute(t, "", "check", path, "--format", "json", "--save")
	require.NoError(t, err)

	out, err = execute(t, "", "history", path, "--json")
	require.NoError(t, err)
	var reviews []store.Review
	require.NoError(t, json.Unmarshal([]byte(out), &reviews), out)
	require.Len(t, reviews, 2)
	assert.Equal(t, runID, reviews[1].RunID, "newest first")
	assert.Greater(t, reviews[1].Total(), reviews[0].Total())
	assert.Len(t, reviews[0].SourceSHA256, 64)

	out, err = execute(t, "", "history", "--show", runID[:8], "--json")
	require.NoError(t, err)
	var shown struct {
		Review store.Review       `json:"review"`
		Items  []store.ReviewItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown), out)
	assert.Equal(t, runID, shown.Review.RunID)
	assert.NotEmpty(t, shown.Items)

	out, err = execute(t, "", "history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Review history")
	assert.Contains(t, out, "▼")

	out, err = execute(t, "", "history", path, "--rules")
	require.NoError(t, err)
	assert.Contains(t, out, "security.dangerous_eval")

	_, err = execute(t, "", "history", "--show", "zzzz")
	assert.ErrorContains(t, err, "no saved review")
}

func TestHistory_Empty(t *testing.T) {
	isolateHome(t)
	out, err := execute(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved reviews")
}

func TestRules(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "", "rules", "--json")
	require.NoError(t, err)
	var docs []review.RuleDoc
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	assert.Len(t, docs, len(review.Catalog()))

	out, err = execute(t, "", "rules", "E501")
	require.NoError(t, err)
	assert.Contains(t, out, "E501")
	assert.Contains(t, out, "Maximum Line Length")

	_, err = execute(t, "", "rules", "nope")
	assert.EqualError(t, err, "unknown rule: nope")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "pspec version dev\n", out)
}

func TestDoctor_JSON(t *testing.T) {
	isolateHome(t)
	out, err := execute(t, "", "doctor", "--json")
	require.NoError(t, err)

	var result doctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, len(result.Checks), result.TotalCount)
	byName := map[string]doctorCheck{}
	for _, c := range result.Checks {
		byName[c.Name] = c
	}
	assert.True(t, byName["Python grammar"].Passed)
	assert.True(t, byName["Rule catalogue"].Passed)
	assert.True(t, byName["Config file"].Passed, "defaults are fine")
	assert.True(t, byName["History database"].Passed, "missing database is fine")
	assert.True(t, byName["Server address"].Passed)
}

func TestTrendDeltas(t *testing.T) {
	reviews := []store.Review{
		{SourceName: "a.py", IssueCount: 1},
		{SourceName: "b.py", FindingCount: 4},
		{SourceName: "a.py", IssueCount: 3},
		{SourceName: "a.py", IssueCount: 3},
	}
	assert.Equal(t, map[int]int{0: -2, 2: 0}, trendDeltas(reviews))
}

func TestNewStoreReview(t *testing.T) {
	res := &review.Result{
		RunID: "abc",
		Summary: review.Summary{
			Issues: 1, Findings: 1, Highest: "warning",
		},
	}
	r, items := newStoreReview("x.py", "x = 1\n", res)
	assert.Equal(t, "abc", r.RunID)
	assert.Equal(t, "x.py", r.SourceName)
	assert.Equal(t, "warning", r.Highest)
	assert.Equal(t, 2, r.Total())
	assert.Len(t, r.SourceSHA256, 64)
	assert.WithinDuration(t, time.Now(), r.ReviewedAt, time.Minute)
	assert.Empty(t, items)
}

func TestReadSource(t *testing.T) {
	name, src, err := readSource(strings.NewReader("y = 2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, stdinName, name)
	assert.Equal(t, "y = 2\n", src)

	name, _, err = readSource(strings.NewReader(""), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, stdinName, name)
}

func TestCheckNotifier(t *testing.T) {
	found := func(name string) (string, error) { return "/usr/bin/" + name, nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	assert.True(t, checkNotifier("linux", found).Passed)
	assert.Equal(t, "/usr/bin/osascript", checkNotifier("darwin", found).Message)
	assert.False(t, checkNotifier("linux", missing).Passed)
	assert.False(t, checkNotifier("plan9", found).Passed)
}

func TestCheckCORSOrigins(t *testing.T) {
	assert.True(t, checkCORSOrigins([]string{"http://localhost:5173", "*"}).Passed)
	assert.False(t, checkCORSOrigins(nil).Passed)
	assert.False(t, checkCORSOrigins([]string{"localhost:5173"}).Passed)
	assert.False(t, checkCORSOrigins([]string{"https://app.example.com/path"}).Passed)
}

func TestCheckServerAddr(t *testing.T) {
	assert.True(t, checkServerAddr("127.0.0.1:8000").Passed)
	assert.True(t, checkServerAddr(":8080").Passed)
	assert.False(t, checkServerAddr("localhost").Passed)
}

func TestWatchStop(t *testing.T) {
	isolateHome(t)

	_, err := execute(t, "", "watch", "--stop")
	assert.ErrorIs(t, err, ErrNoDaemon)

	require.NoError(t, os.MkdirAll(filepath.Dir(pidFilePath()), 0o755))
	require.NoError(t, os.WriteFile(pidFilePath(), []byte("2147483646\n"), 0o644))
	_, err = execute(t, "", "watch", "--stop")
	assert.ErrorIs(t, err, ErrNoDaemon)
	assert.ErrorContains(t, err, "stale PID file")
	assert.NoFileExists(t, pidFilePath())

	_, err = execute(t, "", "watch", "--stop", "app.py")
	assert.Error(t, err, "--stop takes no file")
}
