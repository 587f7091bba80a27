// Package review runs the enabled engines over one snippet and assembles
// the ordered result: style issues, best-practice advisories and domain
// findings, with insights derived last from the other findings.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dhirajnair/pspec/internal/analysis"
	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/style"
)

// ErrCodeTooLong is returned when a source exceeds Options.MaxCodeLength.
var ErrCodeTooLong = errors.New("code exceeds maximum length")

// Result is the outcome of one review.
type Result struct {
	RunID      string                  `json:"run_id" yaml:"run_id"`
	Issues     []style.Issue           `json:"issues" yaml:"issues"`
	Advisories []bestpractice.Advisory `json:"advisories" yaml:"advisories"`
	Findings   []finding.Finding       `json:"findings" yaml:"findings"`
	Summary    Summary                 `json:"summary" yaml:"summary"`
	Elapsed    time.Duration           `json:"-" yaml:"-"`
}

// domainEngine pairs a domain engine with the option that enables it.
type domainEngine struct {
	name    string
	enabled func(Options) bool
	run     analysis.Engine
}

// Merge order of the source-driven domain engines.
var domainEngines = []domainEngine{
	{EngineTypes, func(o Options) bool { return o.Types }, analysis.Types},
	{EngineDataflow, func(o Options) bool { return o.Dataflow }, analysis.Dataflow},
	{EngineErrors, func(o Options) bool { return o.Errors }, analysis.Errors},
	{EngineSecurity, func(o Options) bool { return o.Security }, analysis.Security},
	{EngineMetrics, func(o Options) bool { return o.Metrics }, analysis.Metrics},
}

// Run reviews source. Engines run concurrently, each into its own slot, so
// the merged order is fixed: types, dataflow, errors, security, metrics,
// then insights computed over that concatenation. The only errors are an
// oversized source and a cancelled context; unparseable source simply
// produces no tree-based results.
func Run(ctx context.Context, source string, opts Options) (*Result, error) {
	if opts.MaxCodeLength > 0 && len(source) > opts.MaxCodeLength {
		return nil, fmt.Errorf("%w (%d > %d bytes)", ErrCodeTooLong, len(source), opts.MaxCodeLength)
	}

	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := slog.With("run_id", res.RunID)

	slots := make([][]finding.Finding, len(domainEngines))
	g, gctx := errgroup.WithContext(ctx)
	timed := func(name string, fn func() int) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			n := fn()
			log.Debug("engine finished", "engine", name, "results", n, "elapsed", time.Since(t))
			return nil
		}
	}

	for i, e := range domainEngines {
		if !e.enabled(opts) {
			continue
		}
		g.Go(timed(e.name, func() int {
			slots[i] = e.run(source)
			return len(slots[i])
		}))
	}
	if opts.BestPractice {
		g.Go(timed(EngineBestPractice, func() int {
			if opts.Rules != nil {
				res.Advisories = bestpractice.Run(source, opts.Rules)
			} else {
				res.Advisories = bestpractice.NewEngine().Run(source)
			}
			return len(res.Advisories)
		}))
	}
	if opts.Style {
		g.Go(timed(EngineStyle, func() int {
			res.Issues = style.Check(source, opts.StyleOptions)
			return len(res.Issues)
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running engines: %w", err)
	}

	var merged []finding.Finding
	for _, s := range slots {
		merged = append(merged, s...)
	}
	if opts.Insights {
		merged = append(merged, analysis.Insights(merged)...)
	}
	res.Findings = finding.Dedupe(merged)

	if res.Issues == nil {
		res.Issues = []style.Issue{}
	}
	if res.Advisories == nil {
		res.Advisories = []bestpractice.Advisory{}
	}
	res.Summary = Summarize(res)
	res.Elapsed = time.Since(start)
	log.Debug("review finished",
		"issues", len(res.Issues),
		"advisories", len(res.Advisories),
		"findings", len(res.Findings),
		"elapsed", res.Elapsed)
	return res, nil
}
