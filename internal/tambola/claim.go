package tambola

import (
	"errors"
	"fmt"
)

// ErrInvalidClaim is wrapped by every ClaimError.
var ErrInvalidClaim = errors.New("invalid claim")

type ClaimError struct {
	Prize  Prize
	Reason string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("invalid %s claim: %s", e.Prize, e.Reason)
}

func (e *ClaimError) Unwrap() error { return ErrInvalidClaim }

// Validate evaluates a claim for prize on ticket t. struck is the list of
// numbers the claim asserts as struck; each must already be in called.
// Repeated numbers are ignored. A nil return means the claim is valid.
func Validate(t Ticket, called NumberSet, prize Prize, struck []int) error {
	def, ok := Lookup(prize)
	if !ok {
		return &ClaimError{Prize: prize, Reason: "unknown prize"}
	}

	var asserted NumberSet
	for _, n := range struck {
		if !ValidNumber(n) {
			return &ClaimError{Prize: prize, Reason: fmt.Sprintf("number %d is out of range", n)}
		}
		if !called.Has(n) {
			return &ClaimError{Prize: prize, Reason: fmt.Sprintf("number %d has not been called", n)}
		}
		asserted.Add(n)
	}

	if missing := def.missing(t, asserted); missing > 0 {
		if missing == 1 {
			return &ClaimError{Prize: prize, Reason: "1 number still needed"}
		}
		return &ClaimError{Prize: prize, Reason: fmt.Sprintf("%d numbers still needed", missing)}
	}
	return nil
}
