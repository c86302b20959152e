package uper

import (
	"fmt"
	"math/bits"

	"github.com/goliatone/go-asn1gen/internal/cformat"
	"github.com/goliatone/go-asn1gen/pkg/asn1"
)

// formatTypeInner emits the paired encode/decode statement sequences
// for one checked type, mirroring the case analysis of the layout
// formatter. Mid-body locals are requested from the tracker and flushed
// as a declaration block ahead of the statements.
func (s *state) formatTypeInner(t asn1.Type, checker *asn1.Checker) ([]string, []string, error) {
	switch t := t.(type) {
	case asn1.Integer:
		return s.integerInner(checker)
	case asn1.Boolean:
		return s.booleanInner()
	case asn1.Real:
		return nil, nil, nil
	case asn1.Null:
		return nil, nil, nil
	case asn1.OctetString:
		return s.octetStringInner(checker)
	case asn1.UTF8String:
		return nil, nil, unsupported("UTF8String", "not implemented")
	case asn1.Enumerated:
		return s.enumeratedInner()
	case asn1.Sequence:
		return s.sequenceInner(t, checker)
	case asn1.Choice:
		return s.choiceInner(t, checker)
	case asn1.SequenceOf:
		return s.sequenceOfInner(t, checker)
	case asn1.TypeRef:
		return s.typeRefInner(t)
	default:
		return nil, nil, unsupported(fmt.Sprintf("%T", t), "unknown construct")
	}
}

// integerInner biases through the fixed-width runtime helpers: the
// signed variants add half the cell range before writing unsigned and
// subtract it after reading, removing sign ambiguity in the unaligned
// stream.
func (s *state) integerInner(checker *asn1.Checker) ([]string, []string, error) {
	if !checker.Bound() {
		return nil, nil, unsupported("INTEGER", "not fixed size")
	}

	width := typeWidth(bits.Len64(uint64(checker.Max() - checker.Min())))
	kind := fmt.Sprintf("int%d", width)
	if checker.Min() >= 0 {
		kind = "u" + kind
	}

	encode := []string{
		fmt.Sprintf("encoder_append_%s(encoder_p, src_p->%s);",
			kind, s.accessPath("value", "")),
	}
	decode := []string{
		fmt.Sprintf("dst_p->%s = decoder_read_%s(decoder_p);",
			s.accessPath("value", ""), kind),
	}
	return encode, decode, nil
}

func (s *state) booleanInner() ([]string, []string, error) {
	encode := []string{
		fmt.Sprintf("encoder_append_bool(encoder_p, src_p->%s);",
			s.accessPath("value", "")),
	}
	decode := []string{
		fmt.Sprintf("dst_p->%s = decoder_read_bool(decoder_p);",
			s.accessPath("value", "")),
	}
	return encode, decode, nil
}

// nullInner references and discards the cursor and value parameters so
// the generated routines stay warning-free. Also used for degraded
// placeholder types.
func (s *state) nullInner() ([]string, []string) {
	return []string{
			"(void)encoder_p;",
			"(void)src_p;",
		}, []string{
			"(void)decoder_p;",
			"(void)dst_p;",
		}
}

func (s *state) enumeratedInner() ([]string, []string, error) {
	encode := []string{
		fmt.Sprintf("encoder_append_uint8(encoder_p, src_p->%s);",
			s.accessPath("value", "")),
	}
	decode := []string{
		fmt.Sprintf("dst_p->%s = decoder_read_uint8(decoder_p);",
			s.accessPath("value", "")),
	}
	return encode, decode, nil
}

func (s *state) octetStringInner(checker *asn1.Checker) ([]string, []string, error) {
	if !checker.HasUpperBound() {
		return nil, nil, unsupported("OCTET STRING", "no maximum length")
	}

	location := s.accessPath("", ".")

	var encode, decode []string
	switch {
	case checker.Bound() && checker.Min() == checker.Max():
		encode = []string{
			"encoder_append_bytes(encoder_p,",
			fmt.Sprintf("                     &src_p->%sbuf[0],", location),
			fmt.Sprintf("                     %d);", checker.Max()),
		}
		decode = []string{
			"decoder_read_bytes(decoder_p,",
			fmt.Sprintf("                   &dst_p->%sbuf[0],", location),
			fmt.Sprintf("                   %d);", checker.Max()),
		}
	case checker.Max() < 128:
		encode = []string{
			fmt.Sprintf("encoder_append_uint8(encoder_p, src_p->%slength);", location),
			"encoder_append_bytes(encoder_p,",
			fmt.Sprintf("                     &src_p->%sbuf[0],", location),
			fmt.Sprintf("                     src_p->%slength);", location),
		}
		decode = []string{
			fmt.Sprintf("dst_p->%slength = decoder_read_uint8(decoder_p);", location),
			"",
			fmt.Sprintf("if (dst_p->%slength > %d) {", location, checker.Max()),
			"    decoder_abort(decoder_p, EBADLENGTH);",
			"",
			"    return;",
			"}",
			"",
			"decoder_read_bytes(decoder_p,",
			fmt.Sprintf("                   &dst_p->%sbuf[0],", location),
			fmt.Sprintf("                   dst_p->%slength);", location),
		}
	default:
		encode = []string{
			fmt.Sprintf("encoder_append_length_determinant(encoder_p, src_p->%slength);", location),
			"encoder_append_bytes(encoder_p,",
			fmt.Sprintf("                     &src_p->%sbuf[0],", location),
			fmt.Sprintf("                     src_p->%slength);", location),
		}
		decode = []string{
			fmt.Sprintf("dst_p->%slength = decoder_read_length_determinant(decoder_p);", location),
			"",
			fmt.Sprintf("if (dst_p->%slength > %d) {", location, checker.Max()),
			"    decoder_abort(decoder_p, EBADLENGTH);",
			"",
			"    return;",
			"}",
			"",
			"decoder_read_bytes(decoder_p,",
			fmt.Sprintf("                   &dst_p->%sbuf[0],", location),
			fmt.Sprintf("                   dst_p->%slength);", location),
		}
	}
	return encode, decode, nil
}

// sequenceInner writes the shared presence mask ahead of any masked
// member: one bit per optional or defaulted member in declaration
// order, MSB-first per byte. Defaulted members are omitted on encode
// when equal to their default and restored on decode when the mask bit
// is unset.
func (s *state) sequenceInner(t asn1.Sequence, checker *asn1.Checker) ([]string, []string, error) {
	var encode, decode []string

	var masked []asn1.Member
	for _, member := range t.Members {
		if member.Optional || member.Default != nil {
			masked = append(masked, member)
		}
	}

	maskLength := (len(masked) + 7) / 8
	memberMask := make(map[string]string)
	memberMaskByte := make(map[string]string)

	if maskLength > 0 {
		maskVar := s.uniqueVar(
			fmt.Sprintf("uint8_t %%s[%d];", maskLength),
			"present_mask",
			sideBoth)

		for i := 0; i < maskLength; i++ {
			encode = append(encode, fmt.Sprintf("%s[%d] = 0;", maskVar, i))
		}
		encode = append(encode, "")

		decode = append(decode,
			"decoder_read_bytes(decoder_p,",
			fmt.Sprintf("                   &%s[0],", maskVar),
			fmt.Sprintf("                   sizeof(%s));", maskVar),
			"")

		for i, member := range masked {
			mask := fmt.Sprintf("0x%02x", 1<<(7-i%8))
			maskByte := fmt.Sprintf("%s[%d]", maskVar, i/8)
			memberMask[member.Name] = mask
			memberMaskByte[member.Name] = maskByte

			if member.Optional {
				encode = append(encode,
					fmt.Sprintf("if (src_p->%sis_%s_present) {",
						s.accessPath("", "."), member.Name),
					fmt.Sprintf("    %s |= %s;", maskByte, mask),
					"}",
					"")
				decode = append(decode,
					fmt.Sprintf("dst_p->%sis_%s_present = ((%s & %s) == %s);",
						s.accessPath("", "."), member.Name, maskByte, mask, mask))
			} else {
				encode = append(encode,
					fmt.Sprintf("if (src_p->%s%s != %s) {",
						s.accessPath("", "."), member.Name, formatDefault(member.Default)),
					fmt.Sprintf("    %s |= %s;", maskByte, mask),
					"}",
					"")
			}
		}

		encode = append(encode,
			"encoder_append_bytes(encoder_p,",
			fmt.Sprintf("                     &%s[0],", maskVar),
			fmt.Sprintf("                     sizeof(%s));", maskVar),
			"")
		decode = append(decode, "")
	}

	for _, member := range t.Members {
		memberChecker, err := s.memberChecker(checker, member.Name)
		if err != nil {
			return nil, nil, err
		}

		var memberEncode, memberDecode []string
		err = func() error {
			defer s.trace.pushBoth(member.Name)()
			var err error
			memberEncode, memberDecode, err = s.formatTypeInner(member.Type, memberChecker)
			return err
		}()
		if err != nil {
			return nil, nil, err
		}

		location := s.accessPath("", ".")

		switch {
		case member.Optional:
			present := fmt.Sprintf("%sis_%s_present", location, member.Name)
			memberEncode = wrapIf(fmt.Sprintf("if (src_p->%s) {", present), memberEncode)
			memberDecode = wrapIf(fmt.Sprintf("if (dst_p->%s) {", present), memberDecode)
		case member.Default != nil:
			name := location + member.Name
			memberEncode = wrapIf(
				fmt.Sprintf("if (src_p->%s != %s) {", name, formatDefault(member.Default)),
				memberEncode)

			mask := memberMask[member.Name]
			maskByte := memberMaskByte[member.Name]
			wrapped := []string{
				"",
				fmt.Sprintf("if ((%s & %s) == %s) {", maskByte, mask, mask),
			}
			wrapped = append(wrapped, cformat.Indent(memberDecode)...)
			wrapped = append(wrapped,
				"} else {",
				fmt.Sprintf("    dst_p->%s = %s;", name, formatDefault(member.Default)),
				"}",
				"")
			memberDecode = wrapped
		}

		encode = append(encode, memberEncode...)
		decode = append(decode, memberDecode...)
	}

	return encode, decode, nil
}

func wrapIf(condition string, body []string) []string {
	out := []string{"", condition}
	out = append(out, cformat.Indent(body)...)
	out = append(out, "}", "")
	return out
}

// choiceInner writes an explicit 8-bit tag equal to the alternative's
// declared index, then the chosen alternative. An unrecognized tag on
// decode aborts with the bad-choice error before any payload byte is
// consumed.
func (s *state) choiceInner(t asn1.Choice, checker *asn1.Checker) ([]string, []string, error) {
	var encode, decode []string

	tagVar := s.uniqueVar("uint8_t %s;", "tag", sideDecode)
	choice := s.accessPath("", ".") + "choice"

	for tag, member := range t.Alternatives {
		memberChecker, err := s.memberChecker(checker, member.Name)
		if err != nil {
			return nil, nil, err
		}

		var altEncode, altDecode []string
		err = func() error {
			defer s.trace.pushSchema(member.Name)()
			defer s.trace.pushAccess("value")()
			defer s.trace.pushAccess(member.Name)()
			var err error
			altEncode, altDecode, err = s.formatTypeInner(member.Type, memberChecker)
			return err
		}()
		if err != nil {
			return nil, nil, err
		}

		altEncode = append([]string{
			fmt.Sprintf("encoder_append_uint8(encoder_p, 0x%02x);", tag),
		}, altEncode...)
		altEncode = append(altEncode, "break;")

		encode = append(encode,
			fmt.Sprintf("case %s_choice_%s_e:", s.location(), member.Name))
		encode = append(encode, cformat.Indent(altEncode)...)
		encode = append(encode, "")

		altDecode = append([]string{
			fmt.Sprintf("dst_p->%s = %s_choice_%s_e;", choice, s.location(), member.Name),
		}, altDecode...)
		altDecode = append(altDecode, "break;")

		decode = append(decode, fmt.Sprintf("case 0x%02x:", tag))
		decode = append(decode, cformat.Indent(altDecode)...)
		decode = append(decode, "")
	}

	encodeOut := []string{
		"",
		fmt.Sprintf("switch (src_p->%s) {", choice),
		"",
	}
	encodeOut = append(encodeOut, encode...)
	encodeOut = append(encodeOut,
		"default:",
		"    encoder_abort(encoder_p, EBADCHOICE);",
		"    break;",
		"}",
		"")

	decodeOut := []string{
		fmt.Sprintf("%s = decoder_read_uint8(decoder_p);", tagVar),
		"",
		fmt.Sprintf("switch (%s) {", tagVar),
		"",
	}
	decodeOut = append(decodeOut, decode...)
	decodeOut = append(decodeOut,
		"default:",
		"    decoder_abort(decoder_p, EBADCHOICE);",
		"    break;",
		"}",
		"")

	return encodeOut, decodeOut, nil
}

// sequenceOfInner emits the fixed form (redundant one-byte length-byte
// count, then the element count) when the bounds pin the size, and a
// fixed-width count determinant sized from the maximum otherwise. Both
// forms bound-check the decoded count before looping.
func (s *state) sequenceOfInner(t asn1.SequenceOf, checker *asn1.Checker) ([]string, []string, error) {
	if !checker.Bound() {
		return nil, nil, unsupported("SEQUENCE OF", "no maximum length")
	}
	if checker.Element == nil {
		return nil, nil, missingMemberChecker("element")
	}

	lengthBytesVar := s.uniqueVar("uint8_t %s;", "number_of_length_bytes", sideDecode)
	iVar := s.uniqueVar(
		fmt.Sprintf("%s %%s;", intTypeName(0, checker.Max())),
		"i",
		sideBoth)

	fixed := checker.Min() == checker.Max()
	var lengthVar string
	if fixed {
		lengthVar = s.uniqueVar("uint8_t %s;", "length", sideDecode)
	}

	var elementEncode, elementDecode []string
	err := func() error {
		defer s.trace.pushAccess(fmt.Sprintf("elements[%s]", iVar))()
		var err error
		elementEncode, elementDecode, err = s.formatTypeInner(t.Element, checker.Element)
		return err
	}()
	if err != nil {
		return nil, nil, err
	}

	var encode, decode []string
	if fixed {
		encode = []string{
			"encoder_append_uint8(encoder_p, 1);",
			fmt.Sprintf("encoder_append_uint8(encoder_p, %d);", checker.Max()),
			"",
			fmt.Sprintf("for (%s = 0; %s < %d; %s++) {", iVar, iVar, checker.Max(), iVar),
		}
		encode = append(encode, cformat.Indent(elementEncode)...)

		decode = []string{
			fmt.Sprintf("%s = decoder_read_uint8(decoder_p);", lengthBytesVar),
			fmt.Sprintf("%s = decoder_read_uint8(decoder_p);", lengthVar),
			"",
			fmt.Sprintf("if ((%s != 1) || (%s > %d)) {", lengthBytesVar, lengthVar, checker.Max()),
			"    decoder_abort(decoder_p, EBADLENGTH);",
			"",
			"    return;",
			"}",
			"",
			fmt.Sprintf("for (%s = 0; %s < %d; %s++) {", iVar, iVar, checker.Max(), iVar),
		}
		decode = append(decode, cformat.Indent(elementDecode)...)
	} else {
		location := s.accessPath("", ".")
		lengthBytes := (bits.Len64(uint64(checker.Max())) + 7) / 8

		encode = []string{
			fmt.Sprintf("encoder_append_uint8(encoder_p, %d);", lengthBytes),
			"encoder_append_uint(encoder_p,",
			fmt.Sprintf("                    src_p->%slength,", location),
			fmt.Sprintf("                    %d);", lengthBytes),
			"",
			fmt.Sprintf("for (%s = 0; %s < src_p->%slength; %s++) {",
				iVar, iVar, location, iVar),
		}
		encode = append(encode, cformat.Indent(elementEncode)...)

		decode = []string{
			fmt.Sprintf("%s = decoder_read_uint8(decoder_p);", lengthBytesVar),
			fmt.Sprintf("dst_p->%slength = decoder_read_uint(", location),
			"    decoder_p,",
			fmt.Sprintf("    %s);", lengthBytesVar),
			"",
			fmt.Sprintf("if (dst_p->%slength > %d) {", location, checker.Max()),
			"    decoder_abort(decoder_p, EBADLENGTH);",
			"",
			"    return;",
			"}",
			"",
			fmt.Sprintf("for (%s = 0; %s < dst_p->%slength; %s++) {",
				iVar, iVar, location, iVar),
		}
		decode = append(decode, cformat.Indent(elementDecode)...)
	}

	encode = append(encode, "}", "")
	decode = append(decode, "}", "")

	return encode, decode, nil
}

// typeRefInner delegates to the referenced type's cursor-based inner
// routines, passing the aggregate path through.
func (s *state) typeRefInner(t asn1.TypeRef) ([]string, []string, error) {
	prefix := fmt.Sprintf("%s_%s_%s",
		s.namespace,
		cformat.SnakeCase(t.ModuleName),
		cformat.SnakeCase(t.TypeName))

	encode := []string{
		fmt.Sprintf("%s_encode_inner(encoder_p, &src_p->%s);",
			prefix, s.accessPath("value", "")),
	}
	decode := []string{
		fmt.Sprintf("%s_decode_inner(decoder_p, &dst_p->%s);",
			prefix, s.accessPath("value", "")),
	}
	return encode, decode, nil
}

// definitionBodies produces the encode and decode statement bodies for
// the top-level type, variable declaration blocks flushed first.
func (s *state) definitionBodies(ct asn1.CompiledType) ([]string, []string, error) {
	var encode, decode []string
	var err error

	switch t := ct.Type.(type) {
	case asn1.Null:
		encode, decode = s.nullInner()
	case asn1.Real:
	default:
		encode, decode, err = s.formatTypeInner(t, ct.Checker)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(s.encodeVars) > 0 {
		encode = append(append(append([]string(nil), s.encodeVars...), ""), encode...)
	}
	if len(s.decodeVars) > 0 {
		decode = append(append(append([]string(nil), s.decodeVars...), ""), decode...)
	}

	return cformat.Indent(encode), cformat.Indent(decode), nil
}

func formatDefault(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
