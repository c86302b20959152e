package uper

import (
	"strings"
	"testing"
)

func TestSelectHelpersAlwaysEmitsCursorStructs(t *testing.T) {
	helpers := strings.Join(selectHelpers(""), "\n")

	if !strings.Contains(helpers, "struct encoder_t {") ||
		!strings.Contains(helpers, "struct decoder_t {") {
		t.Fatalf("cursor structs missing:\n%s", helpers)
	}
	if strings.Contains(helpers, "encoder_append_bit(") {
		t.Fatalf("no definitions should select no primitives:\n%s", helpers)
	}
}

func TestSelectHelpersTransitiveEncodeChain(t *testing.T) {
	helpers := strings.Join(selectHelpers(
		"encoder_append_bool(encoder_p, src_p->value);"), "\n")

	// bool calls bit, bit calls alloc, alloc calls abort.
	for _, want := range []string{
		"static void encoder_append_bool(",
		"static void encoder_append_bit(",
		"static ssize_t encoder_alloc(",
		"static void encoder_abort(",
	} {
		if !strings.Contains(helpers, want) {
			t.Fatalf("missing %q:\n%s", want, helpers)
		}
	}

	if strings.Contains(helpers, "static int decoder_read_bit(") {
		t.Fatalf("decode side pulled in without use:\n%s", helpers)
	}
}

func TestSelectHelpersBiasedIntegerChain(t *testing.T) {
	helpers := strings.Join(selectHelpers(
		"encoder_append_int16(encoder_p, src_p->value);"), "\n")

	// int16 biases into uint16, which packs through bytes, bits, bit.
	for _, want := range []string{
		"static void encoder_append_int16(",
		"static void encoder_append_uint16(",
		"static void encoder_append_bytes(",
		"static void encoder_append_bits(",
		"static void encoder_append_bit(",
	} {
		if !strings.Contains(helpers, want) {
			t.Fatalf("missing %q:\n%s", want, helpers)
		}
	}

	if strings.Contains(helpers, "static void encoder_append_uint32(") {
		t.Fatalf("unused width pulled in:\n%s", helpers)
	}
}

func TestSelectHelpersLengthDeterminantChain(t *testing.T) {
	helpers := strings.Join(selectHelpers(
		"encoder_append_length_determinant(encoder_p, src_p->length);"), "\n")

	for _, want := range []string{
		"static void encoder_append_length_determinant(",
		"static void encoder_append_uint8(",
		"static void encoder_append_uint(",
	} {
		if !strings.Contains(helpers, want) {
			t.Fatalf("missing %q:\n%s", want, helpers)
		}
	}
}

func TestSelectHelpersDependencyOrder(t *testing.T) {
	helpers := selectHelpers("encoder_append_bool(encoder_p, true);")

	indexOf := func(prefix string) int {
		for i, h := range helpers {
			if strings.Contains(h, prefix) {
				return i
			}
		}
		t.Fatalf("helper %q not selected", prefix)
		return -1
	}

	// Dependencies precede dependents in the emitted order.
	if indexOf("static void encoder_abort(") > indexOf("static ssize_t encoder_alloc(") {
		t.Fatal("abort must precede alloc")
	}
	if indexOf("static ssize_t encoder_alloc(") > indexOf("static void encoder_append_bit(") {
		t.Fatal("alloc must precede bit append")
	}
	if indexOf("static void encoder_append_bit(") > indexOf("static void encoder_append_bool(") {
		t.Fatal("bit append must precede bool append")
	}
}
