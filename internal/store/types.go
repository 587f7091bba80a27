// Package store provides SQLite access for pspec review history.
package store

import "time"

// Review is one recorded review run.
type Review struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	ReviewedAt    time.Time `json:"reviewed_at"`
	SourceName    string    `json:"source_name"`
	SourceSHA256  string    `json:"source_sha256"`
	IssueCount    int       `json:"issue_count"`
	AdvisoryCount int       `json:"advisory_count"`
	FindingCount  int       `json:"finding_count"`
	Highest       string    `json:"highest_severity,omitempty"`
	Version       string    `json:"version"`
}

// Total is the number of recorded items.
func (r *Review) Total() int {
	return r.IssueCount + r.AdvisoryCount + r.FindingCount
}

// ReviewItem is one issue, advisory or finding of a recorded review.
type ReviewItem struct {
	ID       int64  `json:"id"`
	ReviewID int64  `json:"review_id"`
	Kind     string `json:"kind"`
	RuleID   string `json:"rule_id"`
	Domain   string `json:"domain,omitempty"`
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}
