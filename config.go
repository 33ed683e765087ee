// Package citeproc is the processor (spec.md §5, §6, §7): the public,
// language-neutral entry point that owns one style, one reference library,
// and one evolving cluster order, and drives the style compiler, locale
// resolver, reference store, cluster/position assigner, IR builder,
// disambiguation engine, sorter, and output assembler packages underneath
// it as a single incremental computation graph.
package citeproc

import (
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/render"
)

// LocaleFetcher resolves a requested language to a parsed locale bundle
// (spec.md §1 non-goal: "the locale file loader" is an external
// collaborator). A nil return with a nil error means "no bundle available
// for this language"; the Store's built-in English defaults still cover
// the handful of terms the processor cannot do without.
type LocaleFetcher func(lang string) (*locale.Locale, error)

// Config configures a new Processor (spec.md §6 "new(...)").
type Config struct {
	// Logger receives structured log entries tagged component=... and
	// processor_id=... (SPEC_FULL.md §2.2). Defaults to logrus' standard
	// logger.
	Logger logrus.FieldLogger

	// LocaleFetcher resolves locale bundles on demand. May be nil, in
	// which case only the built-in English term defaults are available.
	LocaleFetcher LocaleFetcher

	// SaveUpdates enables the diagnostics/update queue BatchedUpdates
	// drains (spec.md §6); when false, Drain still forces computation but
	// BatchedUpdates always reports an empty delta.
	SaveUpdates bool

	// Format is the output format every rendered cluster/bibliography
	// entry is produced in, unless overridden per-call (spec.md §6
	// preview_citation_cluster's optional format argument).
	Format render.Format
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

func newProcessorID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
