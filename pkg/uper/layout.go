package uper

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/goliatone/go-asn1gen/internal/cformat"
	"github.com/goliatone/go-asn1gen/pkg/asn1"
)

// typeWidth picks the smallest C integer width whose unsigned range
// covers the given number of bits.
func typeWidth(bitLength int) int {
	switch {
	case bitLength <= 8:
		return 8
	case bitLength <= 16:
		return 16
	case bitLength <= 32:
		return 32
	default:
		return 64
	}
}

// intTypeName returns the C cell type for a bounded integer: smallest
// width covering max-min, signed iff the minimum is negative.
func intTypeName(minimum, maximum int64) string {
	width := typeWidth(bits.Len64(uint64(maximum - minimum)))
	name := fmt.Sprintf("int%d_t", width)
	if minimum >= 0 {
		name = "u" + name
	}
	return name
}

// formatType maps a checked type to its structural layout lines. The
// switch is exhaustive over the asn1.Type variants; the default arm is
// unreachable for well-formed input.
func (s *state) formatType(t asn1.Type, checker *asn1.Checker) ([]string, error) {
	switch t := t.(type) {
	case asn1.Integer:
		return s.formatInteger(checker)
	case asn1.Boolean:
		return []string{"bool"}, nil
	case asn1.Real:
		return nil, nil
	case asn1.Null:
		return nil, nil
	case asn1.OctetString:
		return s.formatOctetString(checker)
	case asn1.UTF8String:
		return s.formatUTF8String(checker)
	case asn1.Enumerated:
		return s.formatEnumerated(t), nil
	case asn1.Sequence:
		return s.formatSequence(t, checker)
	case asn1.Choice:
		return s.formatChoice(t, checker)
	case asn1.SequenceOf:
		return s.formatSequenceOf(t, checker)
	case asn1.TypeRef:
		return s.formatTypeRef(t), nil
	default:
		return nil, unsupported(fmt.Sprintf("%T", t), "unknown construct")
	}
}

func (s *state) formatInteger(checker *asn1.Checker) ([]string, error) {
	if !checker.Bound() {
		return nil, unsupported("INTEGER", "not fixed size")
	}
	return []string{intTypeName(checker.Min(), checker.Max())}, nil
}

func (s *state) formatOctetString(checker *asn1.Checker) ([]string, error) {
	if !checker.HasUpperBound() {
		return nil, unsupported("OCTET STRING", "no maximum length")
	}

	var lines []string
	switch {
	case checker.Bound() && checker.Min() == checker.Max():
	case checker.Max() < 256:
		lines = []string{"    uint8_t length;"}
	default:
		lines = []string{"    uint32_t length;"}
	}

	out := []string{"struct {"}
	out = append(out, lines...)
	out = append(out,
		fmt.Sprintf("    uint8_t buf[%d];", checker.Max()),
		"}")
	return out, nil
}

func (s *state) formatUTF8String(checker *asn1.Checker) ([]string, error) {
	if !checker.HasUpperBound() {
		return nil, unsupported("UTF8String", "no maximum length")
	}
	return nil, unsupported("UTF8String", "not implemented")
}

// formatEnumerated declares a companion enum with the values sorted
// lexicographically, each entry qualified by the owning location for
// global uniqueness.
func (s *state) formatEnumerated(t asn1.Enumerated) []string {
	location := s.location()

	values := append([]string(nil), t.Values...)
	sort.Strings(values)

	entries := make([]string, 0, len(values))
	for _, value := range values {
		entries = append(entries, fmt.Sprintf("    %s_%s_e", location, value))
	}

	s.helperLines = append(s.helperLines,
		fmt.Sprintf("enum %s_e {", location))
	s.helperLines = append(s.helperLines, cformat.JoinSuffix(entries, ",")...)
	s.helperLines = append(s.helperLines, "};", "")

	return []string{fmt.Sprintf("enum %s_e", location)}
}

func (s *state) formatSequence(t asn1.Sequence, checker *asn1.Checker) ([]string, error) {
	var lines []string

	for _, member := range t.Members {
		memberChecker, err := s.memberChecker(checker, member.Name)
		if err != nil {
			return nil, err
		}

		if member.Optional {
			lines = append(lines, fmt.Sprintf("bool is_%s_present;", member.Name))
		}

		var memberLines []string
		err = func() error {
			defer s.trace.pushBoth(member.Name)()
			var err error
			memberLines, err = s.formatType(member.Type, memberChecker)
			return err
		}()
		if err != nil {
			return nil, err
		}

		if len(memberLines) > 0 {
			memberLines[len(memberLines)-1] += fmt.Sprintf(" %s;", member.Name)
		}
		lines = append(lines, memberLines...)
	}

	out := []string{"struct {"}
	out = append(out, cformat.Indent(lines)...)
	out = append(out, "}")
	return out, nil
}

func (s *state) formatSequenceOf(t asn1.SequenceOf, checker *asn1.Checker) ([]string, error) {
	if !checker.Bound() {
		return nil, unsupported("SEQUENCE OF", "no maximum length")
	}
	if checker.Element == nil {
		return nil, missingMemberChecker("element")
	}

	lines, err := s.formatType(t.Element, checker.Element)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		lines[len(lines)-1] += fmt.Sprintf(" elements[%d];", checker.Max())
	}

	var lengthLines []string
	switch {
	case checker.Min() == checker.Max():
	case checker.Max() < 256:
		lengthLines = []string{"uint8_t length;"}
	default:
		lengthLines = []string{"uint32_t length;"}
	}

	out := []string{"struct {"}
	out = append(out, cformat.Indent(append(lengthLines, lines...))...)
	out = append(out, "}")
	return out, nil
}

func (s *state) formatChoice(t asn1.Choice, checker *asn1.Checker) ([]string, error) {
	location := s.location()

	var lines []string
	var choices []string

	for _, member := range t.Alternatives {
		memberChecker, err := s.memberChecker(checker, member.Name)
		if err != nil {
			return nil, err
		}

		var choiceLines []string
		err = func() error {
			defer s.trace.pushBoth(member.Name)()
			var err error
			choiceLines, err = s.formatType(member.Type, memberChecker)
			return err
		}()
		if err != nil {
			return nil, err
		}

		if len(choiceLines) > 0 {
			choiceLines[len(choiceLines)-1] += fmt.Sprintf(" %s;", member.Name)
		}
		lines = append(lines, choiceLines...)
		choices = append(choices,
			fmt.Sprintf("    %s_choice_%s_e", location, member.Name))
	}

	s.helperLines = append(s.helperLines,
		fmt.Sprintf("enum %s_choice_e {", location))
	s.helperLines = append(s.helperLines, cformat.JoinSuffix(choices, ",")...)
	s.helperLines = append(s.helperLines, "};", "")

	inner := []string{
		fmt.Sprintf("enum %s_choice_e choice;", location),
		"union {",
	}
	inner = append(inner, cformat.Indent(lines)...)
	inner = append(inner, "} value;")

	out := []string{"struct {"}
	out = append(out, cformat.Indent(inner)...)
	out = append(out, "}")
	return out, nil
}

// formatTypeRef embeds the referenced aggregate and records the
// dependency edge consumed by the sorter.
func (s *state) formatTypeRef(t asn1.TypeRef) []string {
	s.refs = append(s.refs, t)

	return []string{fmt.Sprintf("struct %s_%s_%s_t",
		s.namespace,
		cformat.SnakeCase(t.ModuleName),
		cformat.SnakeCase(t.TypeName))}
}

// declarationMembers produces the member lines of the top-level struct
// declaration for a compiled type. Composite layouts lose their outer
// braces; scalar layouts gain a value member.
func (s *state) declarationMembers(ct asn1.CompiledType) ([]string, error) {
	var lines []string
	var err error

	switch t := ct.Type.(type) {
	case asn1.Integer:
		lines, err = s.formatInteger(ct.Checker)
		if err == nil {
			lines[0] += " value;"
		}
	case asn1.Boolean:
		lines = []string{"bool value;"}
	case asn1.Real:
	case asn1.Null:
	case asn1.Enumerated:
		lines = s.formatEnumerated(t)
		lines[0] += " value;"
	case asn1.UTF8String:
		lines, err = s.formatUTF8String(ct.Checker)
	case asn1.Sequence:
		lines, err = s.formatSequence(t, ct.Checker)
		lines = stripOuterBraces(lines)
	case asn1.SequenceOf:
		lines, err = s.formatSequenceOf(t, ct.Checker)
		lines = stripOuterBraces(lines)
	case asn1.Choice:
		lines, err = s.formatChoice(t, ct.Checker)
		lines = stripOuterBraces(lines)
	case asn1.OctetString:
		lines, err = s.formatOctetString(ct.Checker)
		lines = stripOuterBraces(lines)
	case asn1.TypeRef:
		err = unsupported("type reference", "top-level alias")
	default:
		err = unsupported(fmt.Sprintf("%T", t), "unknown construct")
	}
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		lines = []string{placeholderMember}
	}
	return lines, nil
}

// placeholderMember keeps degraded and empty aggregates non-empty, C
// forbidding memberless structs.
const placeholderMember = "uint8_t dummy;"

func stripOuterBraces(lines []string) []string {
	if len(lines) < 2 {
		return lines
	}
	return cformat.Dedent(lines[1 : len(lines)-1])
}
