package asn1

import "sort"

// CompiledType pairs a checked type tree with the constraint checker
// derived for it. Both come from the external schema compiler.
type CompiledType struct {
	Type    Type
	Checker *Checker
}

// Modules maps module name to type name to compiled type. This is the
// input contract of the generator.
type Modules map[string]map[string]CompiledType

// ModuleNames returns the module names in sorted order so iteration is
// deterministic.
func (m Modules) ModuleNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeNames returns the sorted type names of one module.
func (m Modules) TypeNames(module string) []string {
	types := m[module]
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
