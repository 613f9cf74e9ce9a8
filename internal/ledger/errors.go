package ledger

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
)

var (
	// ErrValidation marks every rejected input. Match-specific rejections are also ErrInvalidMatch.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidMatch marks a match that can never be committed as entered.
	ErrInvalidMatch = errors.New("invalid match")
	// ErrNotFound is returned when a referenced player or match does not exist.
	ErrNotFound = club.ErrNotFound
	// ErrTransactionFailed means the store failed mid-write. Nothing was applied and the
	// operation can be retried.
	ErrTransactionFailed = errors.New("transaction failed")
)

func invalidf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func invalidMatch(msg string) error {
	return errors.Mark(errors.Mark(errors.New(msg), ErrInvalidMatch), ErrValidation)
}

// txError passes caller mistakes through unchanged and marks everything else as a failed transaction.
func txError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return errors.Mark(errors.Wrapf(err, "failed to %s", op), ErrTransactionFailed)
}

// describeValidation turns the first validator failure into a readable message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidf("%v", err)
	}

	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return invalidf("%s", msg)
}
