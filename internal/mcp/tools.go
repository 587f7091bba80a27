package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dhirajnair/pspec/internal/review"
)

// ReviewSnippetArgs are the arguments of review_snippet.
type ReviewSnippetArgs struct {
	Code    *string  `json:"code"`
	Disable []string `json:"disable,omitempty"`
}

// ListRulesResult holds every rule the review can report except PEP 8 codes.
type ListRulesResult struct {
	Rules []review.RuleDoc `json:"rules"`
}

var (
	noArgsSchema        = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	reviewSnippetSchema = json.RawMessage(`{"type":"object","properties":{"code":{"type":"string","description":"Python source to review"},"disable":{"type":"array","items":{"type":"string"},"description":"Engines to turn off: types, dataflow, errors, security, metrics, insights, best_practice, style"}},"required":["code"],"additionalProperties":false}`)
	explainRuleSchema   = json.RawMessage(`{"type":"object","properties":{"rule_id":{"type":"string","description":"A rule id such as pybp.error.bare_except, security.shell_exec or E501"}},"required":["rule_id"],"additionalProperties":false}`)
)

// addTools registers the review tools on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "review_snippet",
		Description: "Review a Python snippet: PEP 8 issues, best-practice advisories and analysis findings.",
		InputSchema: reviewSnippetSchema,
		Handler:     s.handleReviewSnippet,
	})
	s.registerTool(toolDef{
		Name:        "list_rules",
		Description: "Every analysis and best-practice rule with its severity and suggestion.",
		InputSchema: noArgsSchema,
		Handler:     s.handleListRules,
	})
	s.registerTool(toolDef{
		Name:        "explain_rule",
		Description: "Rationale, authority and fix for a single rule id, including PEP 8 codes.",
		InputSchema: explainRuleSchema,
		Handler:     s.handleExplainRule,
	})
}

func (s *Server) handleReviewSnippet(ctx context.Context, args json.RawMessage) (any, error) {
	var params ReviewSnippetArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if params.Code == nil {
		return nil, errors.New("code is required")
	}
	opts := s.opts
	if err := opts.Disable(params.Disable...); err != nil {
		return nil, err
	}
	return review.Run(ctx, *params.Code, opts)
}

func (s *Server) handleListRules(_ context.Context, _ json.RawMessage) (any, error) {
	return ListRulesResult{Rules: review.Catalog()}, nil
}

func (s *Server) handleExplainRule(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		RuleID string `json:"rule_id"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	id := strings.TrimSpace(params.RuleID)
	if id == "" {
		return nil, errors.New("rule_id is required")
	}
	doc, ok := review.Explain(id)
	if !ok {
		return nil, fmt.Errorf("unknown rule: %s", id)
	}
	return doc, nil
}
