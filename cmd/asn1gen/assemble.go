package main

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-asn1gen/pkg/uper"
)

// Wire-level error catalogue shared by all generated codecs. ENOMEM
// comes from errno.h; the rest are defined here so the header stands
// alone.
const errorDefines = `#ifndef EOUTOFDATA
#    define EOUTOFDATA 1001
#endif

#ifndef EBADCHOICE
#    define EBADCHOICE 1002
#endif

#ifndef EBADLENGTH
#    define EBADLENGTH 1003
#endif
`

// assembleHeader frames the type declarations and prototypes with an
// include guard and the headers the generated structs need.
func assembleHeader(namespace, headerName string, out uper.Output) string {
	guard := guardMacro(namespace, headerName)

	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n", guard)
	fmt.Fprintf(&b, "#define %s\n", guard)
	b.WriteString("\n")
	b.WriteString("#include <stdbool.h>\n")
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("#include <unistd.h>\n")
	b.WriteString("\n")
	b.WriteString(errorDefines)
	b.WriteString("\n")
	b.WriteString(out.TypeDeclarations)
	b.WriteString("\n")
	b.WriteString(out.Declarations)
	b.WriteString("\n")
	fmt.Fprintf(&b, "#endif /* %s */\n", guard)
	return b.String()
}

// assembleSource stacks the selected runtime ahead of the codec
// definitions, inner routines before public wrappers.
func assembleSource(headerName string, out uper.Output) string {
	var b strings.Builder
	b.WriteString("#include <errno.h>\n")
	b.WriteString("#include <string.h>\n")
	if headerName != "" && headerName != "." {
		fmt.Fprintf(&b, "#include \"%s\"\n", headerName)
	}
	b.WriteString("\n")
	b.WriteString(out.Helpers)
	b.WriteString("\n")
	b.WriteString(out.Definitions)
	return b.String()
}

func guardMacro(namespace, headerName string) string {
	base := headerName
	if base == "" || base == "." {
		base = namespace
	}
	macro := strings.ToUpper(base)
	macro = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, macro)
	if !strings.HasSuffix(macro, "_H") {
		macro += "_H"
	}
	return macro
}
