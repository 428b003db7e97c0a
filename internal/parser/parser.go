// Package parser defines the Parser Capability contract: a pure function
// from (repo-relative path, source bytes) to a FileFragment or a
// ParseError, plus the closed registry of language implementations that
// satisfy it. Parsers never touch the filesystem or the cache themselves;
// internal/pipeline owns hashing, cache probing, and merge.
package parser

import "github.com/revet-dev/revet-core/internal/graph"

// CallRef is an unresolved call: callerID is the caller's node id,
// calleeName is the unqualified name the call site referenced.
type CallRef struct {
	CallerID    string
	CalleeName  string
	Line        int
}

// ImportRef is an unresolved import: fileID is the importing File node's
// id, specifier is the raw, unprocessed import/require/use string as
// written in source.
type ImportRef struct {
	FileID     string
	Specifier  string
	Line       int
}

// InheritRef is an unresolved inheritance/extends/implements reference:
// subclassID is the subtype's node id, superName is the unqualified
// name of the supertype referenced.
type InheritRef struct {
	SubclassID string
	SuperName  string
	Line       int
}

// DecorateRef is an unresolved decorator/annotation reference:
// decoratedID is the decorated declaration's node id, decoratorName is
// the unqualified name the decorator expression referenced (e.g. "app"
// for Python's "@app.route(...)", "Injectable" for TS's
// "@Injectable()").
type DecorateRef struct {
	DecoratedID   string
	DecoratorName string
	Line          int
}

// ParseState carries a single file's still-unresolved cross-file
// references forward into internal/resolve. It is part of FileFragment
// and is cached alongside it, so re-parsing a cache-hit file costs
// nothing even though resolution runs after every parse.
type ParseState struct {
	CallsFrom       []CallRef
	Imports         []ImportRef
	InheritanceFrom []InheritRef
	DecoratesFrom   []DecorateRef
}

// FileFragment is a parser's complete output for one source file: the
// nodes and (already-resolved, intra-file) edges it introduced, plus the
// deferred cross-file references in ParseState. Fragments are the unit
// of caching — see internal/cache.
type FileFragment struct {
	Path  string
	Nodes []*graph.Node
	Edges []graph.Edge
	State ParseState
}

// ErrorKind is the closed set of parse failure categories.
type ErrorKind string

const (
	SyntaxUnrecoverable ErrorKind = "SyntaxUnrecoverable"
	GrammarMissing      ErrorKind = "GrammarMissing"
	IoEmpty             ErrorKind = "IoEmpty"
)

// ParseError reports why a file could not be (fully) parsed. A parse
// error never aborts the pipeline: the affected file contributes only a
// File node plus this diagnostic (spec §4.2).
type ParseError struct {
	Path    string
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return string(e.Kind) + ": " + e.Path + ": " + e.Message
}

// ParseFunc is the shape every language implementation exposes: parse
// one file's bytes into a fragment, or report why it couldn't.
type ParseFunc func(relPath string, src []byte) (*FileFragment, *ParseError)

// Capability binds a ParseFunc to the language tag and file extensions
// it handles.
type Capability struct {
	Language   string
	Extensions []string
	Parse      ParseFunc
}

// Registry is the closed set of capabilities known at build time. It is
// immutable after construction — there is no plugin mechanism, per
// spec §9's "closed set of languages" design note.
type Registry struct {
	byExt map[string]Capability
}

// NewRegistry builds a registry from a fixed capability list, indexing
// each by every extension it declares. A later capability silently wins
// over an earlier one for a shared extension — callers control ordering.
func NewRegistry(caps ...Capability) *Registry {
	r := &Registry{byExt: make(map[string]Capability)}
	for _, c := range caps {
		for _, ext := range c.Extensions {
			r.byExt[ext] = c
		}
	}
	return r
}

// ForExtension returns the capability registered for a file extension
// (including the leading dot, e.g. ".go"), and whether one exists.
func (r *Registry) ForExtension(ext string) (Capability, bool) {
	c, ok := r.byExt[ext]
	return c, ok
}

// Extensions returns every extension the registry recognizes.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
