package uper

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBacktraceUnwindsOnEveryPath(t *testing.T) {
	s := newState("ns", "MyModule", "MyType", nil)

	func() {
		defer s.trace.pushBoth("person")()
		defer s.trace.pushSchema("address")()
		defer s.trace.pushAccess("value")()

		if got, want := s.location(), "ns_my_module_my_type_person_address"; got != want {
			t.Fatalf("location = %q, want %q", got, want)
		}
		if got, want := s.accessPath("", "."), "person.value."; got != want {
			t.Fatalf("access path = %q, want %q", got, want)
		}
	}()

	if len(s.trace.schema) != 0 || len(s.trace.access) != 0 {
		t.Fatalf("backtrace not empty after release: schema=%v access=%v",
			s.trace.schema, s.trace.access)
	}
	if got, want := s.accessPath("value", ""), "value"; got != want {
		t.Fatalf("default access path = %q, want %q", got, want)
	}
}

func TestUniqueVarSuffixesRepeatedBases(t *testing.T) {
	s := newState("ns", "M", "T", nil)

	names := []string{
		s.uniqueVar("uint8_t %s;", "tag", sideDecode),
		s.uniqueVar("uint8_t %s;", "tag", sideDecode),
		s.uniqueVar("uint8_t %s;", "tag", sideDecode),
		s.uniqueVar("uint8_t %s;", "i", sideBoth),
	}
	want := []string{"tag", "tag_2", "tag_3", "i"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestUniqueVarRoutesDeclarationBuffers(t *testing.T) {
	s := newState("ns", "M", "T", nil)

	s.uniqueVar("uint8_t %s;", "tag", sideDecode)
	s.uniqueVar("uint32_t %s;", "length", sideEncode)
	s.uniqueVar("uint8_t %s[2];", "present_mask", sideBoth)

	wantEncode := []string{"uint32_t length;", "uint8_t present_mask[2];"}
	wantDecode := []string{"uint8_t tag;", "uint8_t present_mask[2];"}

	if diff := cmp.Diff(wantEncode, s.encodeVars); diff != "" {
		t.Fatalf("unexpected encode buffer (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantDecode, s.decodeVars); diff != "" {
		t.Fatalf("unexpected decode buffer (-want +got):\n%s", diff)
	}
}

func TestResetClearsTypeScopedState(t *testing.T) {
	s := newState("ns", "M", "T", nil)

	release := s.trace.pushBoth("x")
	s.uniqueVar("uint8_t %s;", "tag", sideBoth)
	s.helperLines = append(s.helperLines, "enum x_e {")
	release()

	s.reset()

	if len(s.encodeVars) != 0 || len(s.decodeVars) != 0 || len(s.helperLines) != 0 {
		t.Fatalf("reset left state behind: %v %v %v",
			s.encodeVars, s.decodeVars, s.helperLines)
	}
	if got := s.uniqueVar("uint8_t %s;", "tag", sideBoth); got != "tag" {
		t.Fatalf("suffix counter survived reset: got %q", got)
	}
}
