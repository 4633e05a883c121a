package ledger

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateCutting runs the form-level checks for a cut against lot:
// 0 < length ≤ lot.Length, 0 < width ≤ lot.Width, 0 < quantity ≤ remaining.
// RecordCutting stays the authority on stock; this only gives early feedback.
func ValidateCutting(lot MaterialLot, in CuttingInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Param() == "" {
				return fmt.Errorf("%w: %s is %s", ErrInvalidCutting, fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s must be %s %s", ErrInvalidCutting, fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %v", ErrInvalidCutting, err)
	}
	if in.MaterialID != lot.ID {
		return fmt.Errorf("%w: lot mismatch", ErrInvalidCutting)
	}
	if in.Length > lot.Length {
		return fmt.Errorf("%w: length %g exceeds lot length %g", ErrInvalidCutting, in.Length, lot.Length)
	}
	if in.Width > lot.Width {
		return fmt.Errorf("%w: width %g exceeds lot width %g", ErrInvalidCutting, in.Width, lot.Width)
	}
	if in.Quantity > lot.RemainingQuantity {
		return fmt.Errorf("%w: requested %d, remaining %d", ErrInsufficientStock, in.Quantity, lot.RemainingQuantity)
	}
	return nil
}
