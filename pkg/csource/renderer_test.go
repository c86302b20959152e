package csource

import (
	"strings"
	"testing"
)

func TestRenderDefinitionWrappers(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}

	out, err := renderer.Render(TemplateDefinition, map[string]any{
		"prefix": "ns_my_module_foo",
	})
	if err != nil {
		t.Fatalf("render definition: %v", err)
	}

	for _, want := range []string{
		"ssize_t ns_my_module_foo_encode(",
		"ssize_t ns_my_module_foo_decode(",
		"encoder_init(&encoder, dst_p, size);",
		"ns_my_module_foo_encode_inner(&encoder, src_p);",
		"return (decoder_get_result(&decoder));",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("definition output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBodiesPassThroughVerbatim(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}

	out, err := renderer.Render(TemplateDefinitionInner, map[string]any{
		"prefix":      "ns_m_t",
		"encode_body": "    encoder_append_bytes(encoder_p, &src_p->buf[0], 4);\n",
		"decode_body": "    dst_p->value = (decoder_read_bit(decoder_p) & 1);\n",
	})
	if err != nil {
		t.Fatalf("render inner definition: %v", err)
	}

	// C operators must survive rendering unescaped.
	if !strings.Contains(out, "&src_p->buf[0]") {
		t.Fatalf("encode body was escaped or dropped:\n%s", out)
	}
	if !strings.Contains(out, "(decoder_read_bit(decoder_p) & 1)") {
		t.Fatalf("decode body was escaped or dropped:\n%s", out)
	}
	if !strings.Contains(out, "static void ns_m_t_decode_inner(") {
		t.Fatalf("inner prototype missing:\n%s", out)
	}
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}

	if _, err := renderer.Render("missing", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRenderTypeDeclaration(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}

	out, err := renderer.Render(TemplateTypeDeclaration, map[string]any{
		"type_name":    "Foo",
		"module_name":  "MyModule",
		"prefix":       "ns_my_module_foo",
		"helper_types": "",
		"members":      "    uint8_t value;",
	})
	if err != nil {
		t.Fatalf("render type declaration: %v", err)
	}

	if !strings.Contains(out, "Type Foo in module MyModule.") {
		t.Fatalf("doc comment missing:\n%s", out)
	}
	if !strings.Contains(out, "struct ns_my_module_foo_t {\n    uint8_t value;\n};") {
		t.Fatalf("struct body malformed:\n%s", out)
	}
}
