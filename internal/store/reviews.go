package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAmbiguousRunID is returned when a run id prefix matches several reviews.
var ErrAmbiguousRunID = errors.New("ambiguous run id")

// InsertReview records a review and its items in one transaction and
// returns the review's row id. A zero ReviewedAt is set to now.
func (db *DB) InsertReview(r *Review, items []ReviewItem) (int64, error) {
	if r.ReviewedAt.IsZero() {
		r.ReviewedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO reviews
		(run_id, reviewed_at, source_name, source_sha256, issue_count, advisory_count,
		 finding_count, highest, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ReviewedAt.UTC().Format(time.RFC3339Nano), r.SourceName, r.SourceSHA256,
		r.IssueCount, r.AdvisoryCount, r.FindingCount, r.Highest, r.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting review: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO review_items (review_id, kind, rule_id, domain, line, severity, title)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, it := range items {
		if _, err := stmt.Exec(id, it.Kind, it.RuleID, it.Domain, it.Line, it.Severity, it.Title); err != nil {
			return 0, fmt.Errorf("inserting review item %s: %w", it.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

const reviewColumns = `id, run_id, reviewed_at, source_name, source_sha256,
	issue_count, advisory_count, finding_count, highest, version`

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(row scanner) (*Review, error) {
	var r Review
	var reviewedAt string
	var highest sql.NullString
	err := row.Scan(&r.ID, &r.RunID, &reviewedAt, &r.SourceName, &r.SourceSHA256,
		&r.IssueCount, &r.AdvisoryCount, &r.FindingCount, &highest, &r.Version)
	if err != nil {
		return nil, err
	}
	r.ReviewedAt, _ = time.Parse(time.RFC3339Nano, reviewedAt)
	r.Highest = highest.String
	return &r, nil
}

// ListReviews returns the newest reviews first, optionally only those of
// one source. A limit of zero or less returns every review.
func (db *DB) ListReviews(source string, limit int) ([]Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews"
	var args []any
	if source != "" {
		query += " WHERE source_name = ?"
		args = append(args, source)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// likeEscaper makes a string match itself literally in a LIKE pattern
// declared with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetReview returns the review whose run id starts with prefix, with its
// items in insertion order. It returns nil, nil when nothing matches.
// Wildcards in prefix match only themselves.
func (db *DB) GetReview(prefix string) (*Review, []ReviewItem, error) {
	rows, err := db.conn.Query(
		"SELECT "+reviewColumns+` FROM reviews WHERE run_id LIKE ? || '%' ESCAPE '\' ORDER BY id DESC LIMIT 2`,
		likeEscaper.Replace(prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("finding review: %w", err)
	}
	var matches []*Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			_ = rows.Close()
			return nil, nil, err
		}
		matches = append(matches, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil, nil
	case 2:
		return nil, nil, fmt.Errorf("%w: %q", ErrAmbiguousRunID, prefix)
	}

	items, err := db.reviewItems(matches[0].ID)
	if err != nil {
		return nil, nil, err
	}
	return matches[0], items, nil
}

// LatestReview returns the newest review of source with its items, or
// nil, nil when the source has never been reviewed.
func (db *DB) LatestReview(source string) (*Review, []ReviewItem, error) {
	row := db.conn.QueryRow(
		"SELECT "+reviewColumns+" FROM reviews WHERE source_name = ? ORDER BY id DESC LIMIT 1",
		source,
	)
	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	items, err := db.reviewItems(r.ID)
	if err != nil {
		return nil, nil, err
	}
	return r, items, nil
}

func (db *DB) reviewItems(reviewID int64) ([]ReviewItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, review_id, kind, rule_id, domain, line, severity, title
		 FROM review_items WHERE review_id = ? ORDER BY id`,
		reviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing review items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []ReviewItem
	for rows.Next() {
		var it ReviewItem
		var domain sql.NullString
		if err := rows.Scan(&it.ID, &it.ReviewID, &it.Kind, &it.RuleID, &domain,
			&it.Line, &it.Severity, &it.Title); err != nil {
			return nil, err
		}
		it.Domain = domain.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// RuleCounts tallies how often each rule id appears across all reviews of
// source, or across every review when source is empty.
func (db *DB) RuleCounts(source string) (map[string]int, error) {
	query := `SELECT i.rule_id, COUNT(*) FROM review_items i`
	var args []any
	if source != "" {
		query += ` JOIN reviews r ON r.id = i.review_id WHERE r.source_name = ?`
		args = append(args, source)
	}
	query += ` GROUP BY i.rule_id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
