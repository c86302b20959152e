package uper

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-asn1gen/internal/cformat"
	"github.com/goliatone/go-asn1gen/pkg/asn1"
	"github.com/goliatone/go-asn1gen/pkg/csource"
)

// backtrace tracks the current recursive generation position in two
// synchronized forms: the schema member-name path, used to build
// globally unique helper identifiers, and the C access path, used to
// build struct member expressions. Each push returns a release func the
// caller defers, so the stacks unwind on every exit path and can never
// desynchronize.
type backtrace struct {
	schema []string
	access []string
}

func (b *backtrace) pushBoth(name string) func() {
	b.schema = append(b.schema, name)
	b.access = append(b.access, name)
	return func() {
		b.schema = b.schema[:len(b.schema)-1]
		b.access = b.access[:len(b.access)-1]
	}
}

func (b *backtrace) pushSchema(name string) func() {
	b.schema = append(b.schema, name)
	return func() {
		b.schema = b.schema[:len(b.schema)-1]
	}
}

func (b *backtrace) pushAccess(name string) func() {
	b.access = append(b.access, name)
	return func() {
		b.access = b.access[:len(b.access)-1]
	}
}

// side selects which pending variable-declaration buffers a unique
// local belongs to.
type side int

const (
	sideBoth side = iota
	sideEncode
	sideDecode
)

// state is the per-type generator scratchpad. A fresh one is created
// for every (module, type) pair, so nothing carries over between types
// and independent Generate calls can run in parallel.
type state struct {
	namespace string
	module    string
	typeName  string

	trace       backtrace
	baseNames   map[string]int
	helperLines []string
	encodeVars  []string
	decodeVars  []string
	refs        []asn1.TypeRef

	renderer *csource.Renderer
}

func newState(namespace, module, typeName string, renderer *csource.Renderer) *state {
	return &state{
		namespace: namespace,
		module:    module,
		typeName:  typeName,
		baseNames: make(map[string]int),
		renderer:  renderer,
	}
}

// reset clears everything the current type accumulated. Used when a
// half-generated type degrades to a placeholder.
func (s *state) reset() {
	s.trace = backtrace{}
	s.baseNames = make(map[string]int)
	s.helperLines = nil
	s.encodeVars = nil
	s.decodeVars = nil
	s.refs = nil
}

// prefix is the fully qualified C symbol prefix of the current type.
func (s *state) prefix() string {
	return fmt.Sprintf("%s_%s_%s",
		s.namespace,
		cformat.SnakeCase(s.module),
		cformat.SnakeCase(s.typeName))
}

// location extends the prefix with the schema backtrace, producing the
// globally unique identifier base for helper enums and unions.
func (s *state) location() string {
	loc := s.prefix()
	if len(s.trace.schema) > 0 {
		loc += "_" + strings.Join(s.trace.schema, "_")
	}
	return loc
}

// accessPath joins the C backtrace into a member access expression,
// appending end when non-empty. At the top of a type it returns def.
func (s *state) accessPath(def, end string) string {
	if len(s.trace.access) > 0 {
		return strings.Join(s.trace.access, ".") + end
	}
	return def
}

// uniqueVar allocates a local variable name unique within the current
// type. The first request for a base returns it verbatim; later ones
// get _2, _3 and so on. The declaration line (format must contain one
// %s) lands in the selected pending buffers, flushed at the top of the
// generated routines.
func (s *state) uniqueVar(format, base string, where side) string {
	n := s.baseNames[base]
	s.baseNames[base] = n + 1

	name := base
	if n > 0 {
		name = fmt.Sprintf("%s_%d", base, n+1)
	}

	line := fmt.Sprintf(format, name)
	switch where {
	case sideEncode:
		s.encodeVars = append(s.encodeVars, line)
	case sideDecode:
		s.decodeVars = append(s.decodeVars, line)
	default:
		s.encodeVars = append(s.encodeVars, line)
		s.decodeVars = append(s.decodeVars, line)
	}
	return name
}

func (s *state) memberChecker(checker *asn1.Checker, name string) (*asn1.Checker, error) {
	member, ok := checker.Member(name)
	if !ok {
		return nil, missingMemberChecker(name)
	}
	return member, nil
}
