// Package stock enforces the quantity rule shared by every mutation path:
// a persisted line always satisfies 1 <= quantity <= stock.
package stock

import (
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/google/uuid"
)

// Policy picks what happens when a request exceeds available stock.
type Policy int

const (
	// PolicyClamp lowers the quantity to the available stock.
	PolicyClamp Policy = iota
	// PolicyReject fails with STOCK_EXCEEDED instead.
	PolicyReject
)

// Decision is the outcome of resolving a requested quantity.
type Decision struct {
	Quantity int
	// Remove is set when the line must not exist after the mutation.
	Remove bool
	// Clamped is set when Quantity is lower than what was requested.
	Clamped bool
}

// Clamp bounds requested into [0, stock]. A result of 0 means remove.
func Clamp(requested, stock int) int {
	if requested <= 0 || stock <= 0 {
		return 0
	}
	if requested > stock {
		return stock
	}
	return requested
}

// Resolve applies the guard to a requested quantity for productID.
//
// requested <= 0 always maps to removal. A product without stock cannot be
// held, so it also maps to removal under the clamp policy.
func Resolve(productID uuid.UUID, requested, stock int, policy Policy) (Decision, error) {
	if requested <= 0 {
		return Decision{Remove: true}, nil
	}
	if stock < 0 {
		stock = 0
	}
	if requested <= stock {
		return Decision{Quantity: requested}, nil
	}
	if policy == PolicyReject {
		return Decision{}, pkgerrors.StockExceeded(productID, requested, stock)
	}
	if stock == 0 {
		return Decision{Remove: true, Clamped: true}, nil
	}
	return Decision{Quantity: stock, Clamped: true}, nil
}
