package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/style"
)

// ErrUnknownEngine is returned when an engine name is not recognised.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine names accepted by Options.Disable and Options.Enable.
const (
	EngineTypes        = "types"
	EngineDataflow     = "dataflow"
	EngineErrors       = "errors"
	EngineSecurity     = "security"
	EngineMetrics      = "metrics"
	EngineInsights     = "insights"
	EngineBestPractice = "best_practice"
	EngineStyle        = "style"
)

// EngineNames lists every engine name in run order.
var EngineNames = []string{
	EngineTypes, EngineDataflow, EngineErrors, EngineSecurity, EngineMetrics,
	EngineInsights, EngineBestPractice, EngineStyle,
}

// Options selects the engines for one review.
type Options struct {
	Types        bool
	Dataflow     bool
	Errors       bool
	Security     bool
	Metrics      bool
	Insights     bool
	BestPractice bool
	Style        bool

	// StyleOptions configures the PEP 8 checker.
	StyleOptions style.Options

	// Rules replaces the best-practice catalogue when non-nil.
	Rules []bestpractice.Rule

	// MaxCodeLength rejects longer sources when positive.
	MaxCodeLength int
}

// DefaultOptions enables every engine.
func DefaultOptions() Options {
	return Options{
		Types:        true,
		Dataflow:     true,
		Errors:       true,
		Security:     true,
		Metrics:      true,
		Insights:     true,
		BestPractice: true,
		Style:        true,
	}
}

func (o *Options) flag(name string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EngineTypes:
		return &o.Types, nil
	case EngineDataflow:
		return &o.Dataflow, nil
	case EngineErrors:
		return &o.Errors, nil
	case EngineSecurity:
		return &o.Security, nil
	case EngineMetrics:
		return &o.Metrics, nil
	case EngineInsights:
		return &o.Insights, nil
	case EngineBestPractice, "best-practice", "pybp":
		return &o.BestPractice, nil
	case EngineStyle, "pep8":
		return &o.Style, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Set switches the named engines on or off. Empty names are skipped.
func (o *Options) Set(on bool, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := o.flag(name)
		if err != nil {
			return err
		}
		*p = on
	}
	return nil
}

// Disable switches the named engines off.
func (o *Options) Disable(names ...string) error {
	return o.Set(false, names...)
}

// Enabled reports whether the named engine is on.
func (o Options) Enabled(name string) bool {
	p, err := o.flag(name)
	return err == nil && *p
}
