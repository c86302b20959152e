package uper

import (
	"errors"
	"fmt"
)

// UnsupportedError marks a construct the UPER backend cannot express,
// such as an unbounded integer or string. Raised inside a per-type
// context it degrades that one type to a placeholder; anywhere else it
// is fatal.
type UnsupportedError struct {
	Construct string
	Reason    string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("uper: unsupported %s: %s", e.Construct, e.Reason)
}

func unsupported(construct, reason string) error {
	return &UnsupportedError{Construct: construct, Reason: reason}
}

// ErrMissingMemberChecker signals a mismatch between a type tree and
// its constraint checker. It is never expected for well-formed input
// and always aborts the whole run.
var ErrMissingMemberChecker = errors.New("uper: no member checker")

func missingMemberChecker(name string) error {
	return fmt.Errorf("%w for %q", ErrMissingMemberChecker, name)
}
