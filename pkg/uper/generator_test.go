package uper

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-asn1gen/pkg/asn1"
)

func TestNewRequiresNamespace(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty namespace")
	}
	if _, err := New("   "); err == nil {
		t.Fatal("expected error for blank namespace")
	}
	if _, err := New("ns", nil); err != nil {
		t.Fatalf("nil option should be ignored: %v", err)
	}
}

func TestGenerateOrdersByDependency(t *testing.T) {
	// AOuter sorts before ZInner alphabetically, so only the dependency
	// sorter can put the referenced type first.
	modules := asn1.Modules{
		"MyModule": {
			"AOuter": {
				Type: asn1.Sequence{Members: []asn1.Member{
					{Name: "inner", Type: asn1.TypeRef{
						TypeName:   "ZInner",
						ModuleName: "MyModule",
					}},
				}},
				Checker: &asn1.Checker{Members: []*asn1.Checker{
					{Name: "inner"},
				}},
			},
			"ZInner": {
				Type:    asn1.Integer{},
				Checker: boundedChecker(0, 255),
			},
		},
	}

	g, err := New("ns")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := g.Generate(modules)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	inner := strings.Index(out.TypeDeclarations, "struct ns_my_module_z_inner_t {")
	outer := strings.Index(out.TypeDeclarations, "struct ns_my_module_a_outer_t {")
	if inner < 0 || outer < 0 {
		t.Fatalf("struct declarations missing:\n%s", out.TypeDeclarations)
	}
	if inner > outer {
		t.Fatalf("referenced type must be declared first:\n%s", out.TypeDeclarations)
	}

	if !strings.Contains(out.TypeDeclarations, "    struct ns_my_module_z_inner_t inner;") {
		t.Fatalf("embedded member missing:\n%s", out.TypeDeclarations)
	}

	for _, want := range []string{
		"ssize_t ns_my_module_z_inner_encode(",
		"ssize_t ns_my_module_z_inner_decode(",
		"ssize_t ns_my_module_a_outer_encode(",
	} {
		if !strings.Contains(out.Declarations, want) {
			t.Fatalf("prototype missing %q:\n%s", want, out.Declarations)
		}
	}

	// The outer codec delegates to the inner routines.
	if !strings.Contains(out.Definitions,
		"ns_my_module_z_inner_encode_inner(encoder_p, &src_p->inner);") {
		t.Fatalf("delegation missing:\n%s", out.Definitions)
	}
	if !strings.Contains(out.Definitions,
		"ns_my_module_z_inner_decode_inner(decoder_p, &dst_p->inner);") {
		t.Fatalf("delegation missing:\n%s", out.Definitions)
	}

	// Static inner routines come before the public wrappers.
	innerDef := strings.Index(out.Definitions,
		"static void ns_my_module_a_outer_encode_inner(")
	wrapperDef := strings.Index(out.Definitions,
		"ssize_t ns_my_module_z_inner_encode(")
	if innerDef < 0 || wrapperDef < 0 || innerDef > wrapperDef {
		t.Fatalf("inner routines must precede wrappers:\n%s", out.Definitions)
	}

	// Only the primitives the bodies reach land in the runtime block.
	for _, want := range []string{
		"struct encoder_t {",
		"static void encoder_append_uint8(",
		"static uint8_t decoder_read_uint8(",
	} {
		if !strings.Contains(out.Helpers, want) {
			t.Fatalf("helper missing %q:\n%s", want, out.Helpers)
		}
	}
	if strings.Contains(out.Helpers, "encoder_append_length_determinant") {
		t.Fatalf("unused helper emitted:\n%s", out.Helpers)
	}
}

func TestGenerateDegradesUnsupportedType(t *testing.T) {
	modules := asn1.Modules{
		"MyModule": {
			"Name": {
				Type:    asn1.UTF8String{},
				Checker: boundedChecker(0, 64),
			},
		},
	}

	g, err := New("ns")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := g.Generate(modules)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(out.TypeDeclarations, "    uint8_t dummy;") {
		t.Fatalf("placeholder member missing:\n%s", out.TypeDeclarations)
	}
	for _, want := range []string{
		"    (void)encoder_p;",
		"    (void)src_p;",
		"    (void)decoder_p;",
		"    (void)dst_p;",
	} {
		if !strings.Contains(out.Definitions, want) {
			t.Fatalf("inert body missing %q:\n%s", want, out.Definitions)
		}
	}

	// A degraded codec still gets its public interface.
	if !strings.Contains(out.Declarations, "ssize_t ns_my_module_name_encode(") {
		t.Fatalf("prototype missing:\n%s", out.Declarations)
	}
}

func TestGenerateDegradedTypeDropsPartialState(t *testing.T) {
	// The enum accumulated before the failing member must not leak into
	// the placeholder declaration.
	modules := asn1.Modules{
		"MyModule": {
			"Mixed": {
				Type: asn1.Sequence{Members: []asn1.Member{
					{Name: "kind", Type: asn1.Enumerated{Values: []string{"a", "b"}}},
					{Name: "text", Type: asn1.UTF8String{}},
				}},
				Checker: &asn1.Checker{Members: []*asn1.Checker{
					{Name: "kind"},
					namedChecker("text", 0, 32),
				}},
			},
		},
	}

	g, err := New("ns")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := g.Generate(modules)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if strings.Contains(out.TypeDeclarations, "enum ") {
		t.Fatalf("partial helper enum leaked:\n%s", out.TypeDeclarations)
	}
	if !strings.Contains(out.TypeDeclarations, "    uint8_t dummy;") {
		t.Fatalf("placeholder member missing:\n%s", out.TypeDeclarations)
	}
}

func TestGenerateCheckerMismatchIsFatal(t *testing.T) {
	modules := asn1.Modules{
		"MyModule": {
			"Broken": {
				Type: asn1.Sequence{Members: []asn1.Member{
					{Name: "ghost", Type: asn1.Boolean{}},
				}},
				Checker: &asn1.Checker{},
			},
		},
	}

	g, err := New("ns")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = g.Generate(modules)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrMissingMemberChecker) {
		t.Fatalf("wrong error: %v", err)
	}
	if !strings.Contains(err.Error(), "MyModule.Broken") {
		t.Fatalf("error lacks type position: %v", err)
	}
}

func TestGenerateEmptyModules(t *testing.T) {
	g, err := New("ns")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := g.Generate(asn1.Modules{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.TypeDeclarations != "" || out.Declarations != "" || out.Definitions != "" {
		t.Fatalf("empty input should produce empty blocks: %+v", out)
	}
	// The cursor structs are unconditional.
	if !strings.Contains(out.Helpers, "struct encoder_t {") {
		t.Fatalf("cursor structs missing:\n%s", out.Helpers)
	}
}
