package uper

// sortUserTypes orders the generated types so every type appears after
// all types it references structurally. Each input type is inserted
// into a reverse accumulator just after the rightmost type referencing
// it, which keeps independent subgraphs in input order. Reference
// cycles are not detected; the input contract requires a DAG.
func sortUserTypes(userTypes []*userType) []*userType {
	reversed := make([]*userType, 0, len(userTypes))

	for _, ut := range userTypes {
		insertAt := 0
		for i, sorted := range reversed {
			if sorted.references(ut.typeName, ut.moduleName) && i+1 > insertAt {
				insertAt = i + 1
			}
		}
		reversed = append(reversed, nil)
		copy(reversed[insertAt+1:], reversed[insertAt:])
		reversed[insertAt] = ut
	}

	out := make([]*userType, len(reversed))
	for i, ut := range reversed {
		out[len(reversed)-1-i] = ut
	}
	return out
}
