package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedModel is returned (wrapped) for structurally invalid models.
var ErrMalformedModel = errors.New("malformed model")

// CycleError reports an inheritance cycle found while walking "extends".
type CycleError struct {
	Class     string   // class the walk started from
	Revisited string   // class seen twice
	Chain     []string // superclasses collected before the cycle was detected
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("inheritance cycle at %q while resolving %q (chain: %s)",
		e.Revisited, e.Class, strings.Join(e.Chain, " -> "))
}

// Unwrap lets errors.Is match ErrMalformedModel.
func (e *CycleError) Unwrap() error { return ErrMalformedModel }

// DuplicateMemberError reports two members of the same kind with the same
// name declared on one class.
type DuplicateMemberError struct {
	Class string
	Kind  MemberKind
	Name  string
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("class %q declares %s %q more than once", e.Class, e.Kind, e.Name)
}

// Unwrap lets errors.Is match ErrMalformedModel.
func (e *DuplicateMemberError) Unwrap() error { return ErrMalformedModel }
