package asn1

// Checker carries the effective numeric or length bounds for a type and
// its members, mirroring the shape of the Type it was derived from. It
// is produced by an external constraint checker and trusted as-is; a nil
// Minimum or Maximum means the corresponding bound is absent.
type Checker struct {
	Name    string
	Minimum *int64
	Maximum *int64
	Members []*Checker
	Element *Checker
}

// Bound reports whether both bounds are present.
func (c *Checker) Bound() bool {
	return c != nil && c.Minimum != nil && c.Maximum != nil
}

// HasUpperBound reports whether a maximum is present.
func (c *Checker) HasUpperBound() bool {
	return c != nil && c.Maximum != nil
}

// Min returns the lower bound, or zero when absent.
func (c *Checker) Min() int64 {
	if c == nil || c.Minimum == nil {
		return 0
	}
	return *c.Minimum
}

// Max returns the upper bound, or zero when absent.
func (c *Checker) Max() int64 {
	if c == nil || c.Maximum == nil {
		return 0
	}
	return *c.Maximum
}

// Member looks up the checker for a named member of a composite type.
// Absence signals a mismatch between the type tree and its checker, an
// internal-consistency failure for the caller to escalate.
func (c *Checker) Member(name string) (*Checker, bool) {
	if c == nil {
		return nil, false
	}
	for _, member := range c.Members {
		if member.Name == name {
			return member, true
		}
	}
	return nil, false
}

// Bounds is a convenience constructor used by loaders and tests.
func Bounds(minimum, maximum int64) (*int64, *int64) {
	return &minimum, &maximum
}
