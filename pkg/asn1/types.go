package asn1

// Type is the closed set of checked ASN.1 constructs the generator
// understands. Implementations are value types produced by an external
// schema compiler; the generator never mutates them. Every visitor in
// pkg/uper switches exhaustively over this set so a new construct cannot
// be skipped silently.
type Type interface {
	isType()
}

// Integer is a whole-number field. Its effective bounds live on the
// paired Checker; an unbounded integer is rejected during generation.
type Integer struct{}

// Boolean is a single true/false field.
type Boolean struct{}

// Real is a floating-point field. The UPER backend emits no layout or
// wire bytes for it.
type Real struct{}

// Null is the ASN.1 NULL type. No layout, no wire bytes.
type Null struct{}

// OctetString is a bounded byte string. Bounds live on the Checker.
type OctetString struct{}

// UTF8String is a bounded character string. Bounds live on the Checker.
type UTF8String struct{}

// Enumerated is a named-value set. Ordinals are assigned by the
// generator after a lexicographic sort of the names.
type Enumerated struct {
	Values []string
}

// Member is one named component of a Sequence or Choice. Default, when
// non-nil, holds an int64 or bool literal supplied by the schema
// compiler.
type Member struct {
	Name     string
	Type     Type
	Optional bool
	Default  any
}

// Sequence is an ordered aggregate of members.
type Sequence struct {
	Members []Member
}

// Choice is a tagged union of alternatives in declaration order.
type Choice struct {
	Alternatives []Member
}

// SequenceOf is a bounded repetition of a single element type. The
// count bounds live on the Checker.
type SequenceOf struct {
	Element Type
}

// TypeRef embeds another user-defined type by name. It is the edge set
// of the dependency graph between generated types.
type TypeRef struct {
	TypeName   string
	ModuleName string
}

func (Integer) isType()     {}
func (Boolean) isType()     {}
func (Real) isType()        {}
func (Null) isType()        {}
func (OctetString) isType() {}
func (UTF8String) isType()  {}
func (Enumerated) isType()  {}
func (Sequence) isType()    {}
func (Choice) isType()      {}
func (SequenceOf) isType()  {}
func (TypeRef) isType()     {}
