package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedIntent means the intent service returned something that is
	// not a usable intent (not JSON, unknown action, items not a list).
	ErrMalformedIntent = errors.New("malformed intent")

	// ErrServiceUnavailable means the intent service call failed or timed out.
	ErrServiceUnavailable = errors.New("intent service unavailable")
)

// MenuNotResolvedError reports a menu name with no catalog match.
type MenuNotResolvedError struct {
	MenuName string
}

func (e *MenuNotResolvedError) Error() string {
	return fmt.Sprintf("menu %q not found in catalog", e.MenuName)
}

// InvalidOptionError reports a requested option the item does not declare.
type InvalidOptionError struct {
	MenuName string
	Field    string
	Value    string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("menu %q has no %s option %q", e.MenuName, e.Field, e.Value)
}

// InvalidQuantityError reports an explicitly requested quantity <= 0.
type InvalidQuantityError struct {
	MenuName string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for menu %q", e.Quantity, e.MenuName)
}

// ItemNotInCartError reports an update/remove that referenced a cart entry
// that does not exist.
type ItemNotInCartError struct {
	MenuName string
	Options  OptionSet
}

func (e *ItemNotInCartError) Error() string {
	return fmt.Sprintf("menu %q with options (size=%q temperature=%q) is not in the cart", e.MenuName, e.Options.Size, e.Options.Temperature)
}
