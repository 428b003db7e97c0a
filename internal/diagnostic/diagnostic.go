// Package diagnostic defines the non-fatal event type that flows
// alongside every stage of the pipeline: a dropped edge, an unresolved
// reference, a parse failure. Diagnostics are accumulated, never
// returned as errors, since their presence is expected and total
// (spec §7).
package diagnostic

// Kind is the closed set of diagnostic categories.
type Kind string

const (
	KindParseFailure        Kind = "ParseFailure"
	KindUnresolvedImport    Kind = "UnresolvedImport"
	KindUnresolvedCall      Kind = "UnresolvedCall"
	KindUnresolvedInherit   Kind = "UnresolvedInherit"
	KindAmbiguousCall       Kind = "AmbiguousCall"
	KindAmbiguousInherit    Kind = "AmbiguousInherit"
	KindUnresolvedDecorator Kind = "UnresolvedDecorator"
	KindAmbiguousDecorator  Kind = "AmbiguousDecorator"
)

// Diagnostic is a single non-fatal event worth surfacing to a caller,
// without aborting the operation that produced it.
type Diagnostic struct {
	Kind    Kind
	Path    string
	Message string
}
