package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationNotFound is returned when a LocationRef no longer resolves
	// to a live room. It means the caller holds a dangling reference.
	ErrLocationNotFound = errors.New("location not found")

	// ErrOutOfBounds marks a portal endpoint that lies further outside its
	// room than EdgeTolerance allows.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrMalformedAction marks a recognized tile action whose arguments
	// cannot be parsed.
	ErrMalformedAction = errors.New("malformed tile action")
)

// ContractViolation is raised (as a panic) when a query receives a point or
// portal that does not belong to the room it was asked about. Checks only
// run when Options.CheckContracts is set; with checks disabled passing a
// foreign point is the caller's responsibility and the result is undefined.
type ContractViolation struct {
	Op     string
	Detail string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// contracts gates development-time argument checks.
type contracts bool

func (c contracts) require(ok bool, op string, format string, args ...any) {
	if !bool(c) || ok {
		return
	}
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
