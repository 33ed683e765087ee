// Package errs collects the typed error taxonomy shared across citeproc-go.
//
// Every error a caller might want to distinguish is a package-level *errors.Kind
// built with gopkg.in/src-d/go-errors.v1, the same idiom the teacher's auth
// package uses for ErrNotAuthorized/ErrNoPermission. A Kind is instantiated with
// .New(args...) and matched with kind.Is(err); lower-level plumbing errors are
// wrapped onto a Kind instance with github.com/pkg/errors so the original cause
// survives in %+v output.
package errs

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

// Severity of a compile-time Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Span is a byte range into the source style/locale XML, used for editor
// integration (squiggly underlines, quick-fixes).
type Span struct {
	Start int
	End   int
}

// Diagnostic is one style-compilation problem report.
type Diagnostic struct {
	Severity Severity
	Span     Span
	Message  string
	Hint     string
}

func (d Diagnostic) String() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s [%d:%d]: %s (%s)", d.Severity, d.Span.Start, d.Span.End, d.Message, d.Hint)
	}
	return fmt.Sprintf("%s [%d:%d]: %s", d.Severity, d.Span.Start, d.Span.End, d.Message)
}

// StyleErrorKind is returned from style compilation. It carries every
// Diagnostic collected before compilation gave up, not just the first.
var StyleErrorKind = errors.NewKind("style compilation failed with %d diagnostic(s)")

// StyleError is the concrete value behind StyleErrorKind instances; use
// AsStyleError to recover it from an error returned by style.Compile.
type StyleError struct {
	*errors.Error
	Diagnostics []Diagnostic
}

// NewStyleError builds a StyleError from a collected diagnostic set. diags
// must contain at least one SeverityError entry.
func NewStyleError(diags []Diagnostic) error {
	return &StyleError{
		Error:       StyleErrorKind.New(len(diags)),
		Diagnostics: diags,
	}
}

// AsStyleError recovers the Diagnostic slice from an error produced by
// style.Compile, if any.
func AsStyleError(err error) (*StyleError, bool) {
	se, ok := err.(*StyleError)
	return se, ok
}

// Reordering errors (spec §7, driven by cluster.SetOrder /
// Processor.PreviewCitationCluster).
var (
	ErrNonMonotonicNoteNumber = errors.NewKind("note number %d is not monotonically non-decreasing in the supplied order")
	ErrNonExistentCluster     = errors.NewKind("cluster %q does not exist")
	// ErrClusterOrderWithZero is set_cluster_order's rejection of a preview
	// position (an entry with id = none): only preview_citation_cluster may
	// supply one.
	ErrClusterOrderWithZero = errors.NewKind("set_cluster_order must not provide a preview position")
	// ErrDidNotSupplyZeroPosition is preview_citation_cluster's rejection of
	// a previewOrder that doesn't name exactly one preview slot (id = none).
	ErrDidNotSupplyZeroPosition = errors.NewKind("preview_citation_cluster must provide exactly one preview position")
)

// UnknownLocale is not fatal: callers fall back to en-US and log a warning,
// but library code that wants to report it upward (e.g. for a diagnostics
// panel) can still construct the typed error.
var ErrUnknownLocale = errors.NewKind("locale %q not found, falling back to en-US")

// InvalidReference marks a reference that failed ingestion (unparseable date,
// malformed name). The library continues to load the rest of the references;
// this error is attached to a warning log record, never returned from
// Processor.SetReferences.
var ErrInvalidReference = errors.NewKind("reference %q is invalid: %s")
