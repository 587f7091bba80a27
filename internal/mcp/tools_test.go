package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/review"
)

// callTool invokes the named tool handler and returns the typed result.
func callTool(s *Server, name string, args json.RawMessage) (any, error) {
	for _, tool := range s.tools {
		if tool.Name == name {
			return tool.Handler(context.Background(), args)
		}
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

func TestReviewSnippet(t *testing.T) {
	s := newTestServer()
	args := json.RawMessage(`{"code":"import os\n\ndef run(cmd):\n    try:\n        os.system(cmd)\n    except:\n        pass\n"}`)

	out, err := callTool(s, "review_snippet", args)
	require.NoError(t, err)
	res, ok := out.(*review.Result)
	require.True(t, ok, "got %T", out)

	assert.NotEmpty(t, res.RunID)
	assert.NotEmpty(t, res.Issues, "bare except is E722")
	assert.NotEmpty(t, res.Advisories)

	var ids []string
	for _, f := range res.Findings {
		ids = append(ids, f.RuleID)
	}
	assert.Contains(t, ids, "security.shell_exec")
	assert.Contains(t, ids, "errors.bare_except")
}

func TestReviewSnippet_Disable(t *testing.T) {
	s := newTestServer()
	args := json.RawMessage(`{"code":"def f(x):\n    return eval(x)\n","disable":["style","best_practice","security"]}`)

	out, err := callTool(s, "review_snippet", args)
	require.NoError(t, err)
	res := out.(*review.Result)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Advisories)
	for _, f := range res.Findings {
		assert.NotEqual(t, "security", string(f.Domain))
	}

	_, err = callTool(s, "review_snippet", json.RawMessage(`{"code":"x = 1\n","disable":["lint"]}`))
	assert.ErrorIs(t, err, review.ErrUnknownEngine)
}

func TestReviewSnippet_DoesNotMutateServerOptions(t *testing.T) {
	s := newTestServer()
	_, err := callTool(s, "review_snippet", json.RawMessage(`{"code":"x = 1\n","disable":["style"]}`))
	require.NoError(t, err)
	assert.True(t, s.opts.Style)
}

func TestReviewSnippet_BadArgs(t *testing.T) {
	s := newTestServer()
	_, err := callTool(s, "review_snippet", json.RawMessage(`{"code":42}`))
	assert.ErrorContains(t, err, "invalid arguments")

	_, err = callTool(s, "review_snippet", json.RawMessage(`{}`))
	assert.EqualError(t, err, "code is required")
}

func TestReviewSnippet_EmptyCode(t *testing.T) {
	out, err := callTool(newTestServer(), "review_snippet", json.RawMessage(`{"code":""}`))
	require.NoError(t, err)
	res := out.(*review.Result)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Findings)
}

func TestListRules(t *testing.T) {
	out, err := callTool(newTestServer(), "list_rules", json.RawMessage(`{}`))
	require.NoError(t, err)
	res, ok := out.(ListRulesResult)
	require.True(t, ok, "got %T", out)
	assert.Len(t, res.Rules, len(review.Catalog()))

	seen := map[string]bool{}
	for _, r := range res.Rules {
		seen[r.ID] = true
	}
	assert.True(t, seen[bestpractice.RuleBareExcept])
	assert.True(t, seen["insights.elevated_risk"])
}

func TestExplainRule(t *testing.T) {
	s := newTestServer()

	out, err := callTool(s, "explain_rule", json.RawMessage(`{"rule_id":"E722"}`))
	require.NoError(t, err)
	doc := out.(review.RuleDoc)
	assert.Equal(t, review.EngineStyle, doc.Engine)

	out, err = callTool(s, "explain_rule", json.RawMessage(`{"rule_id":" security.shell_exec "}`))
	require.NoError(t, err)
	assert.Equal(t, "security", out.(review.RuleDoc).Engine)

	_, err = callTool(s, "explain_rule", json.RawMessage(`{}`))
	assert.EqualError(t, err, "rule_id is required")
}
