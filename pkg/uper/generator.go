// Package uper generates C source implementing ASN.1 Unaligned Packed
// Encoding Rules for a batch of type-checked module definitions: struct
// declarations, encode/decode prototypes, a minimal bit-level runtime
// and the paired codec definitions.
package uper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-asn1gen/internal/cformat"
	"github.com/goliatone/go-asn1gen/pkg/asn1"
	"github.com/goliatone/go-asn1gen/pkg/csource"
)

// userType holds the generated artefacts of one (module, type) pair.
// Immutable once built; the sorter only reorders the records.
type userType struct {
	typeName   string
	moduleName string

	typeDeclaration string
	declaration     string
	definitionInner string
	definition      string

	refs []asn1.TypeRef
}

// references reports whether this type structurally embeds the named
// user type.
func (u *userType) references(typeName, moduleName string) bool {
	for _, ref := range u.refs {
		if ref.TypeName == typeName && ref.ModuleName == moduleName {
			return true
		}
	}
	return false
}

// Output is the four text blocks Generate assembles: struct
// declarations, function prototypes, the selected runtime primitives,
// and the codec definitions (inner routines first, public wrappers
// last).
type Output struct {
	TypeDeclarations string
	Declarations     string
	Helpers          string
	Definitions      string
}

// Option customises a Generator.
type Option func(*Generator)

// WithRenderer injects a custom scaffolding renderer.
func WithRenderer(renderer *csource.Renderer) Option {
	return func(g *Generator) {
		if renderer != nil {
			g.renderer = renderer
		}
	}
}

// Generator emits UPER C source for compiled ASN.1 modules. Generate
// owns no shared mutable state across calls, so one Generator may be
// used from multiple goroutines.
type Generator struct {
	namespace string
	renderer  *csource.Renderer
}

// New constructs a Generator for the given C symbol namespace.
func New(namespace string, options ...Option) (*Generator, error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, errors.New("uper: namespace is required")
	}

	g := &Generator{namespace: namespace}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}

	if g.renderer == nil {
		renderer, err := csource.New()
		if err != nil {
			return nil, err
		}
		g.renderer = renderer
	}
	return g, nil
}

// Generate walks the modules in sorted order (modules by name, types
// by name within a module), generates every user type, orders the
// results by structural dependency and assembles the output blocks. A
// type the backend cannot express degrades to a placeholder; a checker
// mismatch aborts the whole run.
func (g *Generator) Generate(modules asn1.Modules) (Output, error) {
	var userTypes []*userType

	for _, moduleName := range modules.ModuleNames() {
		for _, typeName := range modules.TypeNames(moduleName) {
			st := newState(g.namespace, moduleName, typeName, g.renderer)

			ut, err := st.generateUserType(modules[moduleName][typeName])
			if err != nil {
				return Output{}, fmt.Errorf("uper: %s.%s: %w", moduleName, typeName, err)
			}
			userTypes = append(userTypes, ut)
		}
	}

	sorted := sortUserTypes(userTypes)

	typeDeclarations := make([]string, 0, len(sorted))
	declarations := make([]string, 0, len(sorted))
	inners := make([]string, 0, len(sorted))
	wrappers := make([]string, 0, len(sorted))

	for _, ut := range sorted {
		typeDeclarations = append(typeDeclarations, ut.typeDeclaration)
		declarations = append(declarations, ut.declaration)
		inners = append(inners, ut.definitionInner)
		wrappers = append(wrappers, ut.definition)
	}

	definitions := strings.Join(append(inners, wrappers...), "\n")
	helpers := strings.Join(selectHelpers(definitions), "\n")

	return Output{
		TypeDeclarations: strings.Join(typeDeclarations, "\n"),
		Declarations:     strings.Join(declarations, "\n"),
		Helpers:          helpers,
		Definitions:      definitions,
	}, nil
}

// generateUserType produces all four artefacts for one compiled type.
// An unsupported construct resets the scratchpad and degrades the type
// to a one-byte placeholder with inert codec bodies; anything else
// propagates.
func (s *state) generateUserType(ct asn1.CompiledType) (*userType, error) {
	members, err := s.declarationMembers(ct)

	var encode, decode []string
	if err == nil {
		encode, decode, err = s.definitionBodies(ct)
	}
	if err != nil {
		var unsup *UnsupportedError
		if !errors.As(err, &unsup) {
			return nil, err
		}

		s.reset()
		members = []string{placeholderMember}
		e, d := s.nullInner()
		encode, decode = cformat.Indent(e), cformat.Indent(d)
	}

	helperTypes := ""
	if len(s.helperLines) > 0 {
		helperTypes = strings.Join(append(s.helperLines, ""), "\n")
	}

	typeDeclaration, err := s.renderer.Render(csource.TemplateTypeDeclaration, map[string]any{
		"type_name":    s.typeName,
		"module_name":  s.module,
		"prefix":       s.prefix(),
		"helper_types": helperTypes,
		"members":      strings.Join(cformat.Indent(members), "\n"),
	})
	if err != nil {
		return nil, err
	}

	declaration, err := s.renderer.Render(csource.TemplatePrototypes, map[string]any{
		"type_name":   s.typeName,
		"module_name": s.module,
		"prefix":      s.prefix(),
	})
	if err != nil {
		return nil, err
	}

	definitionInner, err := s.renderer.Render(csource.TemplateDefinitionInner, map[string]any{
		"prefix":      s.prefix(),
		"encode_body": strings.Join(append(encode, ""), "\n"),
		"decode_body": strings.Join(append(decode, ""), "\n"),
	})
	if err != nil {
		return nil, err
	}

	definition, err := s.renderer.Render(csource.TemplateDefinition, map[string]any{
		"prefix": s.prefix(),
	})
	if err != nil {
		return nil, err
	}

	return &userType{
		typeName:        s.typeName,
		moduleName:      s.module,
		typeDeclaration: typeDeclaration,
		declaration:     declaration,
		definitionInner: definitionInner,
		definition:      definition,
		refs:            s.refs,
	}, nil
}
