package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Migrate())
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pspec.db")
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.InsertReview(&Review{RunID: "a", SourceName: "x.py", SourceSHA256: "h", Version: "t"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	list, err := db.ListReviews("", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInsertAndGetReview(t *testing.T) {
	db := openTest(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &Review{
		RunID: "4f1c2a3b-0000-0000-0000-000000000000", ReviewedAt: at,
		SourceName: "app.py", SourceSHA256: "abc",
		IssueCount: 1, FindingCount: 2, Highest: "warning", Version: "dev",
	}
	items := []ReviewItem{
		{Kind: "issue", RuleID: "E501", Domain: "style", Line: 3, Severity: "warning", Title: "line too long"},
		{Kind: "finding", RuleID: "errors.bare_except", Domain: "errors", Line: 7, Severity: "warning", Title: "Bare except clause"},
		{Kind: "finding", RuleID: "metrics.complexity", Domain: "metrics", Line: 1, Severity: "advisory", Title: "Function complexity metrics"},
	}
	id, err := db.InsertReview(r, items)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)

	got, gotItems, err := db.GetReview("4f1c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.RunID, got.RunID)
	assert.True(t, at.Equal(got.ReviewedAt))
	assert.Equal(t, "warning", got.Highest)
	assert.Equal(t, 3, got.Total())
	require.Len(t, gotItems, 3)
	assert.Equal(t, "E501", gotItems[0].RuleID)
	assert.Equal(t, "metrics", gotItems[2].Domain)

	missing, _, err := db.GetReview("ffff")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetReview_PrefixIsLiteral(t *testing.T) {
	db := openTest(t)
	for _, id := range []string{"a_c-1", "abc-2", `x\y-3`} {
		_, err := db.InsertReview(&Review{RunID: id, SourceName: "x.py", SourceSHA256: "h", Version: "t"}, nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"underscore", "a_c", "a_c-1"},
		{"plain", "abc", "abc-2"},
		{"backslash", `x\y`, `x\y-3`},
		{"percent matches nothing", "%", ""},
		{"underscore alone matches nothing", "_", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := db.GetReview(tt.prefix)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.RunID)
		})
	}
}

func TestGetReview_Ambiguous(t *testing.T) {
	db := openTest(t)
	for _, id := range []string{"ab-1", "ab-2"} {
		_, err := db.InsertReview(&Review{RunID: id, SourceName: "x.py", SourceSHA256: "h", Version: "t"}, nil)
		require.NoError(t, err)
	}
	_, _, err := db.GetReview("ab")
	assert.ErrorIs(t, err, ErrAmbiguousRunID)

	r, _, err := db.GetReview("ab-2")
	require.NoError(t, err)
	assert.Equal(t, "ab-2", r.RunID)
}

func TestInsertReview_DuplicateRunID(t *testing.T) {
	db := openTest(t)
	r := &Review{RunID: "same", SourceName: "x.py", SourceSHA256: "h", Version: "t"}
	_, err := db.InsertReview(r, nil)
	require.NoError(t, err)
	_, err = db.InsertReview(&Review{RunID: "same", SourceName: "x.py", SourceSHA256: "h", Version: "t"}, nil)
	assert.Error(t, err)
}

func TestListAndLatest(t *testing.T) {
	db := openTest(t)
	for i, src := range []string{"a.py", "b.py", "a.py"} {
		_, err := db.InsertReview(&Review{
			RunID: string(rune('x' + i)), SourceName: src, SourceSHA256: "h",
			FindingCount: i, Version: "t",
		}, []ReviewItem{{Kind: "finding", RuleID: "types.param_any", Line: i + 1, Severity: "advisory", Title: "t"}})
		require.NoError(t, err)
	}

	all, err := db.ListReviews("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "z", all[0].RunID)

	onlyA, err := db.ListReviews("a.py", 1)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, 2, onlyA[0].FindingCount)

	latest, items, err := db.LatestReview("b.py")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "y", latest.RunID)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Line)

	none, _, err := db.LatestReview("c.py")
	require.NoError(t, err)
	assert.Nil(t, none)

	counts, err := db.RuleCounts("a.py")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"types.param_any": 2}, counts)
	counts, err = db.RuleCounts("")
	require.NoError(t, err)
	assert.Equal(t, 3, counts["types.param_any"])
}
